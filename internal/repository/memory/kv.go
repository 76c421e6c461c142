package memory

import (
	"context"
	"sync"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/repositories"
)

// KeyValueStore is an in-memory key-value store for development mode and
// tests. Last write wins, matching the shared-store semantics session
// liveness relies on.
type KeyValueStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKeyValueStore creates an empty in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{data: make(map[string]string)}
}

func (s *KeyValueStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (s *KeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

var _ repositories.KeyValueStore = (*KeyValueStore)(nil)
