package interfaces

import (
	"context"
	"time"
)

// CacheProvider stores rendered documents such as feeds and sitemaps.
// Get returns a nil value and nil error on a miss.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
