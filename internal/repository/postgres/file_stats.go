package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
)

// PostgresFileRepository implements both FileStats (quota accounting) and
// FileWriter (metadata around object-store side effects) on the files
// table.
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository.
func NewFileRepository(config *RepositoryConfig) *PostgresFileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// TotalActiveBytes sums sizes of the user's non-soft-deleted files in the
// tenant.
func (r *PostgresFileRepository) TotalActiveBytes(ctx context.Context, userID, tenant string) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(size_bytes), 0)
		FROM %s
		WHERE owner_id = $1 AND tenant = $2 AND deleted_at IS NULL
	`, r.tables.Files)

	var total int64
	if err := r.pool.QueryRow(ctx, query, userID, tenant).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum active bytes: %w", err)
	}
	return total, nil
}

// Register records a freshly uploaded file's metadata. The id is written
// back into the resource.
func (r *PostgresFileRepository) Register(ctx context.Context, file *models.Resource) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, tenant, name, size_bytes, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, r.tables.Files)

	err := r.pool.QueryRow(ctx, query,
		file.OwnerID,
		file.Tenant,
		file.Name,
		file.SizeBytes,
		file.ObjectKey,
		time.Now(),
	).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("register file: %w", err)
	}
	return nil
}

// SoftDelete marks a file deleted without touching its row or bytes.
func (r *PostgresFileRepository) SoftDelete(ctx context.Context, fileID int64) error {
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Files)

	tag, err := r.pool.Exec(ctx, query, fileID, time.Now())
	if err != nil {
		return fmt.Errorf("soft delete file %d: %w", fileID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Purge permanently removes a file row. Reserved for the admin-only
// destructive path.
func (r *PostgresFileRepository) Purge(ctx context.Context, fileID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	tag, err := r.pool.Exec(ctx, query, fileID)
	if err != nil {
		return fmt.Errorf("purge file %d: %w", fileID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var (
	_ repositories.FileStats  = (*PostgresFileRepository)(nil)
	_ repositories.FileWriter = (*PostgresFileRepository)(nil)
)
