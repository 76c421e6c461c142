package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"shelfgate/internal/domain"
	"shelfgate/internal/domain/repositories"
)

// KeyValueStore implements the KeyValueStore interface on redis, the fast
// shared store reachable from every service instance. Values are written
// without store-level TTL: staleness is computed by the caller from the
// stored timestamp.
type KeyValueStore struct {
	client *redis.Client
}

// NewKeyValueStore creates a redis-backed key-value store and verifies
// the connection.
func NewKeyValueStore(ctx context.Context, addr, password string, db int) (*KeyValueStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &KeyValueStore{client: client}, nil
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *KeyValueStore) Close() error {
	return s.client.Close()
}

var _ repositories.KeyValueStore = (*KeyValueStore)(nil)
