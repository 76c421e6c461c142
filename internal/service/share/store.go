package share

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
	"shelfgate/internal/domain/services"
)

// tokenBytes is the entropy of a plaintext share token.
const tokenBytes = 32

// Store implements ShareService on top of a ShareTokenRepository. Expiry
// is lazy: an expired share is reported as such at resolution time, and a
// separate purge deletes long-dead rows without participating in any
// authorization decision.
type Store struct {
	repo   repositories.ShareTokenRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a share token store.
func NewStore(repo repositories.ShareTokenRepository, logger *slog.Logger) services.ShareService {
	return &Store{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// HashToken derives the persistent lookup key from a plaintext token. A
// storage compromise yields only hashes, so stored rows cannot be replayed
// as links.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create issues a new share for the target resource. The returned
// plaintext is shown once; only its hash is persisted.
func (s *Store) Create(ctx context.Context, ownerID, tenant string, kind models.ResourceKind, targetID int64, ttl *time.Duration) (*models.ShareToken, string, error) {
	if !kind.Valid() {
		return nil, "", &domain.ValidationError{Message: fmt.Sprintf("unknown resource kind %q", kind)}
	}

	plaintext, err := generateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate share token: %w", err)
	}

	now := s.now()
	var expiresAt *time.Time
	if ttl != nil {
		t := now.Add(*ttl)
		expiresAt = &t
	}

	token := &models.ShareToken{
		ID:         uuid.New(),
		TokenHash:  HashToken(plaintext),
		TargetKind: kind,
		TargetID:   targetID,
		Tenant:     tenant,
		OwnerID:    ownerID,
		ExpiresAt:  expiresAt,
		Enabled:    true,
		CreatedAt:  now,
	}

	if err := s.repo.Save(ctx, token); err != nil {
		return nil, "", fmt.Errorf("save share token: %w", err)
	}

	s.logger.Info("share created",
		"share_id", token.ID,
		"tenant", tenant,
		"target_kind", kind,
		"target_id", targetID,
	)

	return token, plaintext, nil
}

// Resolve validates a presented plaintext token against the stored state.
// The three failure kinds stay distinct here; collapsing them into one
// boundary message is the web layer's job.
func (s *Store) Resolve(ctx context.Context, plaintext, tenant string) (*models.ShareToken, error) {
	token, err := s.repo.FindByHash(ctx, tenant, HashToken(plaintext))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrShareNotFound
		}
		return nil, fmt.Errorf("lookup share token: %w", err)
	}

	if !token.Enabled {
		s.logger.Info("disabled share presented", "share_id", token.ID, "tenant", tenant)
		return nil, domain.ErrShareDisabled
	}
	if token.Expired(s.now()) {
		s.logger.Info("expired share presented", "share_id", token.ID, "tenant", tenant)
		return nil, domain.ErrShareExpired
	}

	return token, nil
}

// Revoke disables a share. The row stays behind for the access log; a
// disabled share fails every later Resolve with ErrShareDisabled.
func (s *Store) Revoke(ctx context.Context, callerID string, callerRole models.Role, plaintext, tenant string) error {
	token, err := s.repo.FindByHash(ctx, tenant, HashToken(plaintext))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrShareNotFound
		}
		return fmt.Errorf("lookup share token: %w", err)
	}

	if token.OwnerID != callerID && callerRole != models.RoleAdmin {
		return domain.ErrNotOwner
	}

	if err := s.repo.Disable(ctx, token.ID); err != nil {
		return fmt.Errorf("disable share token: %w", err)
	}

	s.logger.Info("share revoked", "share_id", token.ID, "tenant", tenant, "caller", callerID)
	return nil
}

// PurgeDead physically deletes disabled or expired shares older than the
// given age.
func (s *Store) PurgeDead(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	n, err := s.repo.DeleteDead(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge dead shares: %w", err)
	}
	if n > 0 {
		s.logger.Info("dead shares purged", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
