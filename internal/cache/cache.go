// Package cache provides the shared key-value store with TTL semantics used by the rate limiter.
//
// Two implementations are available: RedisCache, shared between every API instance, and
// MemoryCache, local to one process. Both implement Updater so that read-modify-write
// cycles on a single key can run without interleaving.
package cache

import (
	"context"
	"time"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// ErrUpdateConflict is returned when an optimistic update kept losing the race for a key.
var ErrUpdateConflict = apperrors.New("cache: too many concurrent updates")

// Cache defines the operations the core needs from a key-value store.
type Cache interface {
	// Get returns the value stored under key. found is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key. A ttl <= 0 stores the key without expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// TTL returns the remaining lifetime of key. found is false when the key is absent
	// or has no expiration.
	TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks connectivity with the backing store.
	Ping(ctx context.Context) error

	// Close releases the resources held by the cache.
	Close() error
}

// Item is a cache value together with its remaining lifetime.
type Item struct {
	Value string
	TTL   time.Duration
}

// UpdateFunc computes the next item from the current one. found reports whether the key
// existed; when it did not, current is the zero Item.
type UpdateFunc func(current Item, found bool) (next Item, err error)

// Updater is implemented by caches able to apply an UpdateFunc to one key atomically.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
