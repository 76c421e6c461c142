package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
)

// PostgresFileACLLookup implements the FileACLLookup interface.
type PostgresFileACLLookup struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileACLLookup creates a new file ACL lookup.
func NewFileACLLookup(config *RepositoryConfig) repositories.FileACLLookup {
	return &PostgresFileACLLookup{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the grant a user holds on a file, if any. A row with an
// unknown permission string is reported as no grant rather than an error;
// the closed enum is the contract, not the column.
func (l *PostgresFileACLLookup) Get(ctx context.Context, fileID int64, userID string) (models.Permission, bool, error) {
	query := fmt.Sprintf(`
		SELECT permission
		FROM %s
		WHERE file_id = $1 AND user_id = $2
	`, l.tables.FileACLs)

	var raw string
	err := l.pool.QueryRow(ctx, query, fileID, userID).Scan(&raw)
	if err != nil {
		if isPgNoRowsError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get acl for file %d user %s: %w", fileID, userID, err)
	}

	permission, ok := models.ParsePermission(raw)
	if !ok {
		return "", false, nil
	}
	return permission, true, nil
}
