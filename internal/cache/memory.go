package cache

import (
	"context"
	"sync"
	"time"

	"github.com/NotSilaev/MrStone/internal/clock"
)

type memoryItem struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// MemoryCache is a process-local Cache. Expired keys are dropped lazily on access.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	clock clock.Clock
}

// NewMemoryCache creates an empty MemoryCache using clk for expiration.
func NewMemoryCache(clk clock.Clock) *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		clock: clk,
	}
}

// lookup returns the live item for key. Callers must hold mu.
func (m *MemoryCache) lookup(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if item.expired(m.clock.Now()) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return item, true
}

// store writes value under key. Callers must hold mu.
func (m *MemoryCache) store(key, value string, ttl time.Duration) {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = m.clock.Now().Add(ttl)
	}
	m.items[key] = item
}

// remaining returns the lifetime left for item, or 0 when it never expires.
func (m *MemoryCache) remaining(item memoryItem) time.Duration {
	if item.expiresAt.IsZero() {
		return 0
	}
	return item.expiresAt.Sub(m.clock.Now())
}

// Get returns the value stored under key.
func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.lookup(key)
	if !ok {
		return "", false, nil
	}
	return item.value, true, nil
}

// Set stores value under key for ttl.
func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, value, ttl)
	return nil
}

// TTL returns the remaining lifetime of key.
func (m *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.lookup(key)
	if !ok || item.expiresAt.IsZero() {
		return 0, false, nil
	}
	return m.remaining(item), true, nil
}

// Delete removes key.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Update applies fn to key while holding the cache lock.
func (m *MemoryCache) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var current Item
	item, found := m.lookup(key)
	if found {
		current = Item{Value: item.value, TTL: m.remaining(item)}
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}

	m.store(key, next.Value, next.TTL)
	return nil
}

// Ping always succeeds for the in-process cache.
func (m *MemoryCache) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close drops every stored key.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]memoryItem)
	return nil
}
