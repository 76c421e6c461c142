package quota

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"shelfgate/internal/cache"
	"shelfgate/internal/domain/models"
)

// fakeStats serves byte totals from a map and counts lookups.
type fakeStats struct {
	totals map[string]int64 // key: userID + "/" + tenant
	calls  int
}

func (f *fakeStats) TotalActiveBytes(_ context.Context, userID, tenant string) (int64, error) {
	f.calls++
	return f.totals[userID+"/"+tenant], nil
}

func testLimits() map[models.Role]int64 {
	return map[models.Role]int64{
		models.RoleReader:    1 << 30,
		models.RoleLibrarian: 10 << 30,
		models.RoleAdmin:     Unlimited,
	}
}

func newTestTracker(stats *fakeStats) *Tracker {
	return &Tracker{
		stats:  stats,
		limits: testLimits(),
		logger: slog.New(slog.DiscardHandler),
	}
}

func TestMaxQuota(t *testing.T) {
	tr := newTestTracker(&fakeStats{})

	if got := tr.MaxQuota(models.RoleReader); got != 1<<30 {
		t.Errorf("MaxQuota(READER) = %d, want %d", got, int64(1<<30))
	}
	if got := tr.MaxQuota(models.RoleLibrarian); got != 10<<30 {
		t.Errorf("MaxQuota(LIBRARIAN) = %d, want %d", got, int64(10<<30))
	}
	if got := tr.MaxQuota(models.RoleAdmin); got != Unlimited {
		t.Errorf("MaxQuota(ADMIN) = %d, want Unlimited", got)
	}
	if got := tr.MaxQuota(models.Role("GUEST")); got != 0 {
		t.Errorf("MaxQuota(unknown) = %d, want 0", got)
	}
}

func TestCanUpload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		used     int64
		role     models.Role
		incoming int64
		want     bool
	}{
		{"fits comfortably", 0, models.RoleReader, 1000, true},
		{"exact fit at the limit", 1<<30 - 100, models.RoleReader, 100, true},
		{"reader over limit", 1_000_000_000, models.RoleReader, 100_000_000, false},
		{"zero-size upload is a no-op", 1 << 29, models.RoleReader, 0, true},
		{"librarian has headroom", 1_000_000_000, models.RoleLibrarian, 100_000_000, true},
		{"admin unbounded", 1 << 40, models.RoleAdmin, 1 << 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &fakeStats{totals: map[string]int64{"u1/LIB1": tt.used}}
			tr := newTestTracker(stats)

			got, err := tr.CanUpload(ctx, "u1", "LIB1", tt.role, tt.incoming)
			if err != nil {
				t.Fatalf("CanUpload() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanUpload(used=%d, incoming=%d) = %v, want %v", tt.used, tt.incoming, got, tt.want)
			}
		})
	}
}

func TestRemainingClampsToZero(t *testing.T) {
	ctx := context.Background()

	// A concurrent overshoot can push usage past the limit; remaining
	// must still report zero, never a negative number.
	stats := &fakeStats{totals: map[string]int64{"u1/LIB1": 2 << 30}}
	tr := newTestTracker(stats)

	remaining, err := tr.Remaining(ctx, "u1", "LIB1", models.RoleReader)
	if err != nil {
		t.Fatalf("Remaining() error = %v", err)
	}
	if remaining != 0 {
		t.Errorf("Remaining() = %d, want 0", remaining)
	}

	info, err := tr.Info(ctx, "u1", "LIB1", models.RoleReader)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Remaining != 0 || info.Used != 2<<30 || info.Max != 1<<30 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestInfoUnlimited(t *testing.T) {
	stats := &fakeStats{totals: map[string]int64{"root/LIB1": 123}}
	tr := newTestTracker(stats)

	info, err := tr.Info(context.Background(), "root", "LIB1", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Max != Unlimited || info.Remaining != Unlimited || info.Used != 123 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestUsedQuotaCaching(t *testing.T) {
	ctx := context.Background()
	stats := &fakeStats{totals: map[string]int64{"u1/LIB1": 500}}
	tr := newTestTracker(stats)
	tr.used = cache.New[string, int64](time.Minute, 16)

	for i := 0; i < 3; i++ {
		if _, err := tr.UsedQuota(ctx, "u1", "LIB1"); err != nil {
			t.Fatalf("UsedQuota() error = %v", err)
		}
	}
	if stats.calls != 1 {
		t.Errorf("collaborator calls = %d, want 1 (cached)", stats.calls)
	}

	// Invalidation forces a fresh read after an upload changes usage.
	tr.Invalidate("u1", "LIB1")
	stats.totals["u1/LIB1"] = 900
	used, err := tr.UsedQuota(ctx, "u1", "LIB1")
	if err != nil {
		t.Fatalf("UsedQuota() error = %v", err)
	}
	if used != 900 {
		t.Errorf("UsedQuota() after invalidate = %d, want 900", used)
	}
	if stats.calls != 2 {
		t.Errorf("collaborator calls = %d, want 2", stats.calls)
	}
}
