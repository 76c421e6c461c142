package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
)

// PostgresResourceLookup implements the ResourceLookup interface across
// the bucket, folder, and file tables.
type PostgresResourceLookup struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewResourceLookup creates a new resource lookup.
func NewResourceLookup(config *RepositoryConfig) repositories.ResourceLookup {
	return &PostgresResourceLookup{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get resolves a resource's authorization metadata by kind and id.
// Soft-deleted files are returned with DeletedAt set; callers decide
// whether that means absent (reads) or eligible (purge).
func (l *PostgresResourceLookup) Get(ctx context.Context, kind models.ResourceKind, id int64) (*models.Resource, error) {
	resource := &models.Resource{Kind: kind, ID: id}

	switch kind {
	case models.KindBucket, models.KindFolder:
		table := l.tables.Buckets
		if kind == models.KindFolder {
			table = l.tables.Folders
		}
		query := fmt.Sprintf(`
			SELECT owner_id, tenant, name
			FROM %s
			WHERE id = $1
		`, table)

		err := l.pool.QueryRow(ctx, query, id).Scan(
			&resource.OwnerID,
			&resource.Tenant,
			&resource.Name,
		)
		if err != nil {
			if isPgNoRowsError(err) {
				return nil, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
		}

	case models.KindFile:
		query := fmt.Sprintf(`
			SELECT owner_id, tenant, name, size_bytes, object_key, deleted_at
			FROM %s
			WHERE id = $1
		`, l.tables.Files)

		err := l.pool.QueryRow(ctx, query, id).Scan(
			&resource.OwnerID,
			&resource.Tenant,
			&resource.Name,
			&resource.SizeBytes,
			&resource.ObjectKey,
			&resource.DeletedAt,
		)
		if err != nil {
			if isPgNoRowsError(err) {
				return nil, fmt.Errorf("file %d: %w", id, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("get file %d: %w", id, err)
		}

	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown resource kind %q", kind)}
	}

	return resource, nil
}
