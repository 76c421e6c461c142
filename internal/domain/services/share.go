package services

import (
	"context"
	"time"

	"shelfgate/internal/domain/models"
)

// ShareService issues, resolves, and revokes anonymous share tokens.
// Resolution is the only entry point for anonymous access; it bypasses the
// role/ownership model for the single resource the share names.
type ShareService interface {
	// Create issues a share. The plaintext token is returned exactly once
	// and never persisted. The caller must already have passed an
	// authorization check for the target (share action on the resource).
	// A nil ttl means the share never expires.
	Create(ctx context.Context, ownerID, tenant string, kind models.ResourceKind, targetID int64, ttl *time.Duration) (*models.ShareToken, string, error)

	// Resolve hashes the plaintext, looks up the share, and applies the
	// validity invariant. Fails with domain.ErrShareNotFound,
	// ErrShareExpired, or ErrShareDisabled; the three are distinct for the
	// audit log even though the boundary collapses them.
	Resolve(ctx context.Context, plaintext, tenant string) (*models.ShareToken, error)

	// Revoke disables the share (audit trail retained). Only the share's
	// owner or an administrator may revoke; others get domain.ErrNotOwner.
	Revoke(ctx context.Context, callerID string, callerRole models.Role, plaintext, tenant string) error

	// PurgeDead physically deletes disabled or expired shares older than
	// the given age. Independent of resolution; correctness of Resolve
	// does not depend on it ever running.
	PurgeDead(ctx context.Context, olderThan time.Duration) (int64, error)
}
