package repositories

import (
	"context"

	"shelfgate/internal/domain/models"
)

// ResourceLookup resolves a protected resource's metadata (owner, tenant,
// size) for authorization decisions. Returns domain.ErrNotFound when the
// resource does not exist.
type ResourceLookup interface {
	Get(ctx context.Context, kind models.ResourceKind, id int64) (*models.Resource, error)
}

// FileACLLookup resolves the fine-grained grant a user holds on a file.
// The boolean is false when no ACL entry exists.
type FileACLLookup interface {
	Get(ctx context.Context, fileID int64, userID string) (models.Permission, bool, error)
}

// FileStats aggregates file metadata for quota accounting.
type FileStats interface {
	// TotalActiveBytes sums the sizes of the user's non-soft-deleted
	// files within the tenant.
	TotalActiveBytes(ctx context.Context, userID, tenant string) (int64, error)
}

// FileWriter records file metadata around object-store side effects.
// Registration happens after the quota gate passed and the bytes landed.
type FileWriter interface {
	Register(ctx context.Context, file *models.Resource) error
	SoftDelete(ctx context.Context, fileID int64) error
	// Purge permanently removes a soft-deleted file row.
	Purge(ctx context.Context, fileID int64) error
}
