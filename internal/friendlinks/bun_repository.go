package friendlinks

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const friendLinkNamespace = "friend_link"

// BunRepository implements Repository on bun with optional caching.
type BunRepository struct {
	repo         repository.Repository[*FriendLink]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewFriendLinkRepository(db)
	r := &BunRepository{repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = friendLinkNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, link *FriendLink) (*FriendLink, error) {
	record, err := r.repo.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("friend link repository error: %w", err)
	}
	return record, r.invalidate(ctx)
}

func (r *BunRepository) Update(ctx context.Context, link *FriendLink) (*FriendLink, error) {
	record, err := r.repo.Update(ctx, link,
		repository.UpdateByID(link.ID.String()),
		repository.UpdateColumns("name", "url", "description", "avatar", "status", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, link.ID.String())
	}
	return record, r.invalidate(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*FriendLink, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*FriendLink, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at ASC")
	}))
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &FriendLink{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return r.invalidate(ctx)
}

func (r *BunRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("friend link repository error: %w", err)
}
