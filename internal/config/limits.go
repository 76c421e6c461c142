package config

import (
	"shelfgate/internal/domain/models"
	"shelfgate/internal/service/quota"
)

const (
	// ReaderQuotaBytes is the storage limit for readers. 1 GiB keeps
	// personal uploads cheap to host while covering typical document
	// collections.
	ReaderQuotaBytes int64 = 1 << 30

	// LibrarianQuotaBytes is the storage limit for librarians, who
	// curate whole collections on behalf of a tenant.
	LibrarianQuotaBytes int64 = 10 << 30
)

// QuotaLimits returns the role -> byte-limit table. This is
// configuration, not derived state; administrators are unbounded.
func QuotaLimits() map[models.Role]int64 {
	return map[models.Role]int64{
		models.RoleReader:    ReaderQuotaBytes,
		models.RoleLibrarian: LibrarianQuotaBytes,
		models.RoleAdmin:     quota.Unlimited,
	}
}
