package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds shared configuration for repository
// implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names so dev, test, and
// prod rows can share one database.
type TableNames struct {
	Buckets     string
	Folders     string
	Files       string
	FileACLs    string
	ShareTokens string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Buckets:     prefix + "buckets",
		Folders:     prefix + "folders",
		Files:       prefix + "files",
		FileACLs:    prefix + "file_acls",
		ShareTokens: prefix + "share_tokens",
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies the
// connection. The interpolated table prefixes are applied before SQL is
// sent, so each environment gets its own prepared statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
