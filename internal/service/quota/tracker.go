package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shelfgate/internal/cache"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
)

// Unlimited marks a role with no byte limit.
const Unlimited int64 = -1

// DefaultUsedTTL bounds how stale a cached usage figure may get. Usage is
// recomputed from file metadata on demand, never maintained as an
// authoritative counter.
const DefaultUsedTTL = 30 * time.Second

// Tracker implements QuotaService against a FileStats collaborator.
//
// CanUpload is a deliberate check-then-act: concurrent uploads for one
// user can both pass and overshoot the limit. Remaining clamps at zero so
// the overshoot never surfaces as a negative quota.
type Tracker struct {
	stats  repositories.FileStats
	limits map[models.Role]int64
	used   *cache.Cache[string, int64]
	logger *slog.Logger
}

// NewTracker creates a quota tracker with the given role limit table.
// Roles missing from the table get no storage at all.
func NewTracker(stats repositories.FileStats, limits map[models.Role]int64, used *cache.Cache[string, int64], logger *slog.Logger) services.QuotaService {
	return &Tracker{
		stats:  stats,
		limits: limits,
		used:   used,
		logger: logger,
	}
}

func usageKey(userID, tenant string) string {
	return userID + "\x00" + tenant
}

// MaxQuota returns the configured byte limit for the role, Unlimited for
// roles so configured.
func (t *Tracker) MaxQuota(role models.Role) int64 {
	limit, ok := t.limits[role]
	if !ok {
		return 0
	}
	return limit
}

// UsedQuota sums the user's active file bytes in the tenant, serving a
// recent figure from the cache when one exists.
func (t *Tracker) UsedQuota(ctx context.Context, userID, tenant string) (int64, error) {
	key := usageKey(userID, tenant)
	if t.used != nil {
		if v, ok := t.used.Get(key); ok {
			return v, nil
		}
	}

	used, err := t.stats.TotalActiveBytes(ctx, userID, tenant)
	if err != nil {
		return 0, fmt.Errorf("sum active bytes for %s in %s: %w", userID, tenant, err)
	}

	if t.used != nil {
		t.used.Set(key, used)
	}
	return used, nil
}

// CanUpload reports whether the prospective upload fits. It must be
// called before any bytes move to the object store.
func (t *Tracker) CanUpload(ctx context.Context, userID, tenant string, role models.Role, incoming int64) (bool, error) {
	limit := t.MaxQuota(role)
	if limit == Unlimited {
		return true, nil
	}

	used, err := t.UsedQuota(ctx, userID, tenant)
	if err != nil {
		return false, err
	}

	ok := used+incoming <= limit
	if !ok {
		t.logger.Info("upload rejected by quota",
			"user", userID,
			"tenant", tenant,
			"role", role,
			"used", used,
			"incoming", incoming,
			"limit", limit,
		)
	}
	return ok, nil
}

// Remaining returns limit - used clamped to zero, or Unlimited.
func (t *Tracker) Remaining(ctx context.Context, userID, tenant string, role models.Role) (int64, error) {
	limit := t.MaxQuota(role)
	if limit == Unlimited {
		return Unlimited, nil
	}

	used, err := t.UsedQuota(ctx, userID, tenant)
	if err != nil {
		return 0, err
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Info bundles the quota view for the web layer.
func (t *Tracker) Info(ctx context.Context, userID, tenant string, role models.Role) (*models.QuotaInfo, error) {
	limit := t.MaxQuota(role)

	used, err := t.UsedQuota(ctx, userID, tenant)
	if err != nil {
		return nil, err
	}

	remaining := Unlimited
	if limit != Unlimited {
		remaining = limit - used
		if remaining < 0 {
			remaining = 0
		}
	}

	return &models.QuotaInfo{Used: used, Max: limit, Remaining: remaining}, nil
}

// Invalidate drops the cached usage for the pair.
func (t *Tracker) Invalidate(userID, tenant string) {
	if t.used != nil {
		t.used.Delete(usageKey(userID, tenant))
	}
}
