package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
)

// DefaultWindow is the sliding liveness window. Deliberately much shorter
// than token expiry: sensitive paths can demand a fresher login without
// shortening the token's own lifetime.
const DefaultWindow = 120 * time.Second

// Guard implements SessionGuard on a shared key-value store. The stored
// value is the login time in unix seconds; staleness is computed here, not
// by store-level TTL. Concurrent logins for the same pair race benignly -
// the most recent login wins.
type Guard struct {
	kv     repositories.KeyValueStore
	window time.Duration
	allow  map[string]struct{}
	logger *slog.Logger
	now    func() time.Time
}

// NewGuard creates a liveness guard. allowPaths are endpoints that stay
// reachable with a stale session, like the login and status endpoints
// themselves; window <= 0 falls back to DefaultWindow.
func NewGuard(kv repositories.KeyValueStore, window time.Duration, allowPaths []string, logger *slog.Logger) services.SessionGuard {
	if window <= 0 {
		window = DefaultWindow
	}
	allow := make(map[string]struct{}, len(allowPaths))
	for _, p := range allowPaths {
		allow[p] = struct{}{}
	}
	return &Guard{
		kv:     kv,
		window: window,
		allow:  allow,
		logger: logger,
		now:    time.Now,
	}
}

func loginKey(userID, tenant string) string {
	return userID + tenant + "logintime"
}

// MarkLogin records now for the pair, overwriting any previous marker.
func (g *Guard) MarkLogin(ctx context.Context, userID, tenant string) error {
	seconds := strconv.FormatInt(g.now().Unix(), 10)
	if err := g.kv.Set(ctx, loginKey(userID, tenant), seconds); err != nil {
		return fmt.Errorf("mark login for %s in %s: %w", userID, tenant, err)
	}
	return nil
}

// IsLive reports whether the pair logged in within the window. Allow-listed
// paths are always timein, even with no marker at all.
func (g *Guard) IsLive(ctx context.Context, userID, tenant, path string) (services.LivenessStatus, error) {
	if _, ok := g.allow[path]; ok {
		return services.StatusTimein, nil
	}

	value, err := g.kv.Get(ctx, loginKey(userID, tenant))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return services.StatusTimeout, nil
		}
		return services.StatusTimeout, fmt.Errorf("read login marker for %s in %s: %w", userID, tenant, err)
	}

	recorded, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		g.logger.Warn("corrupt login marker", "user", userID, "tenant", tenant, "value", value)
		return services.StatusTimeout, nil
	}

	if g.now().Sub(time.Unix(recorded, 0)) > g.window {
		return services.StatusTimeout, nil
	}
	return services.StatusTimein, nil
}
