// Package cache provides a bounded in-memory cache with lazy TTL expiry
// and LRU eviction. It replaces ad hoc process-wide caches with an
// explicit capability: lifetime and size are fixed at construction and
// the cache is passed to whoever needs it.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key        K
	value      V
	insertedAt time.Time
}

// Cache maps keys to values with a fixed TTL measured from insertion and
// an upper bound on entries, evicting least-recently-used first. All
// methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	ll         *list.List // front = most recently used
	items      map[K]*list.Element
	now        func() time.Time
}

// New creates a cache. maxEntries must be positive; a zero ttl means
// entries never expire by age (eviction still applies).
func New[K comparable, V any](ttl time.Duration, maxEntries int) *Cache[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[K]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached value and whether it was present and fresh.
// Expired entries are removed on access; there is no background sweeper.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := el.Value.(*entry[K, V])
	if c.ttl > 0 && c.now().Sub(ent.insertedAt) >= c.ttl {
		c.removeElement(el)
		return zero, false
	}

	c.ll.MoveToFront(el)
	return ent.value, true
}

// Set inserts or replaces the value for key, resetting its age. When the
// cache is full the least-recently-used entry is evicted.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[K, V])
		ent.value = value
		ent.insertedAt = c.now()
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry[K, V]{key: key, value: value, insertedAt: c.now()})
	c.items[key] = el

	if c.ll.Len() > c.maxEntries {
		if oldest := c.ll.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes the entry for key, if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Len returns the number of entries, counting expired ones not yet
// collected by access.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache[K, V]) removeElement(el *list.Element) {
	ent := el.Value.(*entry[K, V])
	c.ll.Remove(el)
	delete(c.items, ent.key)
}
