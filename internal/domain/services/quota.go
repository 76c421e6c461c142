package services

import (
	"context"

	"shelfgate/internal/domain/models"
)

// QuotaService gates uploads on per-(user, tenant) storage quotas. The
// check must run before any bytes reach the object store so that a failed
// upload never leaves an orphaned object behind.
//
// CanUpload is a check-then-act: two concurrent uploads for the same user
// can both pass before either completes, overshooting the quota. That is
// tolerated; Remaining clamps at zero and availability wins over strict
// enforcement under concurrency.
type QuotaService interface {
	// MaxQuota returns the byte limit for a primary role, or
	// models-level unlimited (-1) for administrators.
	MaxQuota(role models.Role) int64

	// UsedQuota sums the user's active file bytes within the tenant.
	UsedQuota(ctx context.Context, userID, tenant string) (int64, error)

	// CanUpload reports whether used + incoming fits under the role's
	// limit.
	CanUpload(ctx context.Context, userID, tenant string, role models.Role, incoming int64) (bool, error)

	// Remaining returns max - used, clamped to zero. Unlimited roles get
	// -1.
	Remaining(ctx context.Context, userID, tenant string, role models.Role) (int64, error)

	// Info bundles used/max/remaining for the quota endpoint.
	Info(ctx context.Context, userID, tenant string, role models.Role) (*models.QuotaInfo, error)

	// Invalidate drops any cached usage for the pair, called after an
	// upload or delete changes the active byte count.
	Invalidate(userID, tenant string)
}
