package articles

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

const articleNamespace = "article"

// BunRepository implements Repository on bun with optional caching.
type BunRepository struct {
	repo         repository.Repository[*Article]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository creates an article repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates an article repository whose reads go
// through the go-repository-cache decorator.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewArticleRepository(db)
	r := &BunRepository{repo: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = articleNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Create(ctx, article)
	if err != nil {
		return nil, err
	}
	return record, r.invalidate(ctx)
}

func (r *BunRepository) Update(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Update(ctx, article,
		repository.UpdateByID(article.ID.String()),
		repository.UpdateColumns(
			"title",
			"content",
			"summary",
			"rendered",
			"meta",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "article", article.ID.String())
	}
	return record, r.invalidate(ctx)
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "article", slug)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Article, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at DESC")
	}))
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Article{ID: id}); err != nil {
		return mapRepositoryError(err, "article", id.String())
	}
	return r.invalidate(ctx)
}

// invalidate drops cached list and lookup entries after a write.
func (r *BunRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
