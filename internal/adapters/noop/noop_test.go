package noop_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-privateplot/internal/adapters/noop"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

func TestCacheNeverStores(t *testing.T) {
	var cache interfaces.CacheProvider = noop.Cache()
	ctx := context.Background()

	if err := cache.Set(ctx, "feed", []byte("<rss/>"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := cache.Get(ctx, "feed")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != nil {
		t.Fatalf("expected miss, got %v", value)
	}
}
