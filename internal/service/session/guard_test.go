package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"shelfgate/internal/domain/services"
	"shelfgate/internal/repository/memory"
)

func newTestGuard(now time.Time) *Guard {
	return &Guard{
		kv:     memory.NewKeyValueStore(),
		window: DefaultWindow,
		allow:  map[string]struct{}{"/api/auth/login": {}, "/api/auth/session": {}},
		logger: slog.New(slog.DiscardHandler),
		now:    func() time.Time { return now },
	}
}

func TestIsLiveAllowListedPath(t *testing.T) {
	guard := newTestGuard(time.Now())

	// No MarkLogin has ever happened; allow-listed paths stay reachable.
	status, err := guard.IsLive(context.Background(), "u1", "LIB1", "/api/auth/session")
	if err != nil {
		t.Fatalf("IsLive() error = %v", err)
	}
	if status != services.StatusTimein {
		t.Errorf("IsLive(allow-listed) = %v, want timein", status)
	}
}

func TestIsLiveWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	guard := newTestGuard(now)
	ctx := context.Background()

	if err := guard.MarkLogin(ctx, "u1", "LIB1"); err != nil {
		t.Fatalf("MarkLogin() error = %v", err)
	}

	tests := []struct {
		name    string
		elapsed time.Duration
		want    services.LivenessStatus
	}{
		{"fresh login", 0, services.StatusTimein},
		{"within window", 119 * time.Second, services.StatusTimein},
		{"at the boundary", 120 * time.Second, services.StatusTimein},
		{"past the window", 121 * time.Second, services.StatusTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard.now = func() time.Time { return now.Add(tt.elapsed) }
			status, err := guard.IsLive(ctx, "u1", "LIB1", "/api/files/upload")
			if err != nil {
				t.Fatalf("IsLive() error = %v", err)
			}
			if status != tt.want {
				t.Errorf("IsLive(+%v) = %v, want %v", tt.elapsed, status, tt.want)
			}
		})
	}
}

func TestIsLiveNoMarker(t *testing.T) {
	guard := newTestGuard(time.Now())

	status, err := guard.IsLive(context.Background(), "u1", "LIB1", "/api/files/upload")
	if err != nil {
		t.Fatalf("IsLive() error = %v", err)
	}
	if status != services.StatusTimeout {
		t.Errorf("IsLive(no marker) = %v, want timeout", status)
	}
}

func TestMarkLoginRefreshesWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	guard := newTestGuard(now)
	ctx := context.Background()

	if err := guard.MarkLogin(ctx, "u1", "LIB1"); err != nil {
		t.Fatalf("MarkLogin() error = %v", err)
	}

	// A later login overwrites the marker; the newest one wins.
	guard.now = func() time.Time { return now.Add(10 * time.Minute) }
	if err := guard.MarkLogin(ctx, "u1", "LIB1"); err != nil {
		t.Fatalf("MarkLogin() error = %v", err)
	}

	guard.now = func() time.Time { return now.Add(10*time.Minute + 30*time.Second) }
	status, err := guard.IsLive(ctx, "u1", "LIB1", "/api/files/upload")
	if err != nil {
		t.Fatalf("IsLive() error = %v", err)
	}
	if status != services.StatusTimein {
		t.Errorf("IsLive() after refresh = %v, want timein", status)
	}
}

func TestLivenessIsPerUserAndTenant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	guard := newTestGuard(now)
	ctx := context.Background()

	if err := guard.MarkLogin(ctx, "u1", "LIB1"); err != nil {
		t.Fatalf("MarkLogin() error = %v", err)
	}

	for _, pair := range []struct{ user, tenant string }{
		{"u2", "LIB1"},
		{"u1", "LIB2"},
	} {
		status, err := guard.IsLive(ctx, pair.user, pair.tenant, "/api/files/upload")
		if err != nil {
			t.Fatalf("IsLive() error = %v", err)
		}
		if status != services.StatusTimeout {
			t.Errorf("IsLive(%s, %s) = %v, want timeout", pair.user, pair.tenant, status)
		}
	}
}
