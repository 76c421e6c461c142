package services

import "context"

// LivenessStatus is the result of a session-liveness check.
type LivenessStatus string

const (
	StatusTimein  LivenessStatus = "timein"
	StatusTimeout LivenessStatus = "timeout"
)

// SessionGuard tracks "logged in recently" per (user, tenant) with a
// sliding window, independent of token expiry. It lets sensitive paths
// force faster re-validation without shortening the token's own lifetime.
type SessionGuard interface {
	// MarkLogin records the current time for the pair. Called on every
	// successful login; the newest login wins.
	MarkLogin(ctx context.Context, userID, tenant string) error

	// IsLive returns StatusTimein for allow-listed paths regardless of
	// state, otherwise StatusTimeout when no login is recorded or the
	// recorded login is older than the window.
	IsLive(ctx context.Context, userID, tenant, path string) (LivenessStatus, error)
}
