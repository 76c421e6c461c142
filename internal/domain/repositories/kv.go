package repositories

import "context"

// KeyValueStore is the fast shared store backing session liveness. The
// semantics are deliberately TTL-agnostic: callers compute staleness from
// the stored timestamp, not from store-level expiry. Concurrent writers
// for the same key may race; last write wins.
type KeyValueStore interface {
	// Get returns domain.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
