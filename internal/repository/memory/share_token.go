package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/models"
	"shelfgate/internal/domain/repositories"
)

// ShareTokenRepository is an in-memory implementation for development mode
// and tests. Map access is guarded by one mutex, which trivially gives the
// read-after-write consistency the share store requires per hash key.
type ShareTokenRepository struct {
	mu     sync.Mutex
	byHash map[string]*models.ShareToken // key: tenant + "\x00" + hash
	byID   map[uuid.UUID]*models.ShareToken
}

// NewShareTokenRepository creates an empty in-memory share repository.
func NewShareTokenRepository() *ShareTokenRepository {
	return &ShareTokenRepository{
		byHash: make(map[string]*models.ShareToken),
		byID:   make(map[uuid.UUID]*models.ShareToken),
	}
}

func hashKey(tenant, hash string) string {
	return tenant + "\x00" + hash
}

func (r *ShareTokenRepository) Save(_ context.Context, token *models.ShareToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *token
	r.byHash[hashKey(token.Tenant, token.TokenHash)] = &cp
	r.byID[token.ID] = &cp
	return nil
}

func (r *ShareTokenRepository) FindByHash(_ context.Context, tenant, hash string) (*models.ShareToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byHash[hashKey(tenant, hash)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (r *ShareTokenRepository) Disable(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	token.Enabled = false
	return nil
}

func (r *ShareTokenRepository) DeleteDead(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, token := range r.byHash {
		dead := (!token.Enabled && token.CreatedAt.Before(cutoff)) ||
			(token.ExpiresAt != nil && token.ExpiresAt.Before(cutoff))
		if dead {
			delete(r.byHash, key)
			delete(r.byID, token.ID)
			n++
		}
	}
	return n, nil
}

var _ repositories.ShareTokenRepository = (*ShareTokenRepository)(nil)
