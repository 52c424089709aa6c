package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-privateplot/internal/adapters/memory"
)

func TestCacheExpiresEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := memory.NewCache(memory.WithNow(func() time.Time { return now }))
	ctx := context.Background()

	if err := cache.Set(ctx, "rss", "cached", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := cache.Get(ctx, "rss"); got != "cached" {
		t.Fatalf("expected cached value, got %v", got)
	}

	now = now.Add(time.Hour)
	if got, _ := cache.Get(ctx, "rss"); got != nil {
		t.Fatalf("expected entry to expire, got %v", got)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", 1, 0)
	_ = cache.Set(ctx, "b", 2, 0)

	_ = cache.Delete(ctx, "a")
	if got, _ := cache.Get(ctx, "a"); got != nil {
		t.Fatalf("expected a deleted")
	}
	if got, _ := cache.Get(ctx, "b"); got != 2 {
		t.Fatalf("expected b kept, got %v", got)
	}

	_ = cache.Clear(ctx)
	if got, _ := cache.Get(ctx, "b"); got != nil {
		t.Fatalf("expected cache cleared")
	}
}
