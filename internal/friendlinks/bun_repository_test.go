package friendlinks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/pkg/testsupport"
)

func TestFriendLinkService_WithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()

	bunDB := testsupport.NewBunSQLiteDB(t)

	if err := friendlinks.EnsureSchema(ctx, bunDB); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := friendlinks.NewService(
		friendlinks.NewBunRepositoryWithCache(bunDB, cacheSvc, repocache.NewDefaultKeySerializer()),
		friendlinks.WithNow(func() time.Time { return now }),
	)

	erin, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Erin", URL: "https://erin.dev"})
	if err != nil {
		t.Fatalf("create erin: %v", err)
	}
	if _, err := svc.List(ctx); err != nil {
		t.Fatalf("prime list: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Finn", URL: "https://finn.dev", Status: friendlinks.StatusInactive}); err != nil {
		t.Fatalf("create finn: %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != erin.ID {
		t.Fatalf("expected two links oldest first, got %d", len(all))
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Erin" {
		t.Fatalf("expected only erin active, got %+v", active)
	}

	name := "Erin B."
	if _, err := svc.Update(ctx, erin.ID, friendlinks.UpdateInput{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	fetched, err := svc.Get(ctx, erin.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Name != name {
		t.Fatalf("expected updated name, got %q", fetched.Name)
	}

	if err := svc.Delete(ctx, erin.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *friendlinks.NotFoundError
	if _, err := svc.Get(ctx, erin.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
