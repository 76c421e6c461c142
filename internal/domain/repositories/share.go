package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shelfgate/internal/domain/models"
)

// ShareTokenRepository persists share tokens. Lookups key on the one-way
// token hash, never the plaintext. The store must offer read-after-write
// consistency on the hash key: creating and immediately resolving the same
// token observes the created state.
type ShareTokenRepository interface {
	Save(ctx context.Context, token *models.ShareToken) error

	// FindByHash returns domain.ErrNotFound when no row matches the
	// (tenant, hash) pair, regardless of validity.
	FindByHash(ctx context.Context, tenant, hash string) (*models.ShareToken, error)

	// Disable flips enabled to false. The row is kept for the audit trail.
	Disable(ctx context.Context, id uuid.UUID) error

	// DeleteDead physically removes disabled or expired rows older than
	// the cutoff. Used by the purge job only, never by resolution.
	DeleteDead(ctx context.Context, cutoff time.Time) (int64, error)
}
