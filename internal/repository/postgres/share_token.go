package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
)

// PostgresShareTokenRepository implements the ShareTokenRepository
// interface. The token_hash column carries a unique index per tenant;
// postgres read-after-write on that index gives the consistency the share
// store requires.
type PostgresShareTokenRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewShareTokenRepository creates a new share token repository.
func NewShareTokenRepository(config *RepositoryConfig) repositories.ShareTokenRepository {
	return &PostgresShareTokenRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Save inserts a new share token row.
func (r *PostgresShareTokenRepository) Save(ctx context.Context, token *models.ShareToken) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, token_hash, target_kind, target_id, tenant, owner_id, expires_at, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.ShareTokens)

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.TokenHash,
		string(token.TargetKind),
		token.TargetID,
		token.Tenant,
		token.OwnerID,
		token.ExpiresAt,
		token.Enabled,
		token.CreatedAt,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("share token hash collision: %w", domain.ErrConflict)
		}
		return fmt.Errorf("save share token: %w", err)
	}
	return nil
}

// FindByHash looks a share up by its (tenant, hash) pair. Rows are
// returned regardless of validity; the service applies the invariant.
func (r *PostgresShareTokenRepository) FindByHash(ctx context.Context, tenant, hash string) (*models.ShareToken, error) {
	query := fmt.Sprintf(`
		SELECT id, token_hash, target_kind, target_id, tenant, owner_id, expires_at, enabled, created_at
		FROM %s
		WHERE tenant = $1 AND token_hash = $2
	`, r.tables.ShareTokens)

	var (
		token models.ShareToken
		kind  string
	)
	err := r.pool.QueryRow(ctx, query, tenant, hash).Scan(
		&token.ID,
		&token.TokenHash,
		&kind,
		&token.TargetID,
		&token.Tenant,
		&token.OwnerID,
		&token.ExpiresAt,
		&token.Enabled,
		&token.CreatedAt,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find share token: %w", err)
	}
	token.TargetKind = models.ResourceKind(kind)

	return &token, nil
}

// Disable flips the enabled flag, keeping the row for the audit trail.
func (r *PostgresShareTokenRepository) Disable(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET enabled = false WHERE id = $1`, r.tables.ShareTokens)

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("disable share token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteDead removes disabled rows created before the cutoff and rows
// whose expiry passed before the cutoff.
func (r *PostgresShareTokenRepository) DeleteDead(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE (NOT enabled AND created_at < $1)
		   OR (expires_at IS NOT NULL AND expires_at < $1)
	`, r.tables.ShareTokens)

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete dead share tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
