package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-process interfaces.CacheProvider with per-entry expiry.
// A zero ttl keeps the entry until it is deleted.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

var _ interfaces.CacheProvider = (*Cache)(nil)

// Option configures the cache.
type Option func(*Cache)

// WithNow overrides the clock used for expiry.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(_ context.Context, key string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Clear(context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}
