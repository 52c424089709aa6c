package articles

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps articles in memory. Used by tests and by the server
// when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Article
	bySlug map[string]uuid.UUID
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[uuid.UUID]*Article),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(_ context.Context, article *Article) (*Article, error) {
	if article == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlug[article.Slug]; taken {
		return nil, ErrSlugExists
	}
	cloned := cloneArticle(article)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneArticle(cloned), nil
}

func (r *MemoryRepository) Update(_ context.Context, article *Article) (*Article, error) {
	if article == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[article.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: article.ID.String()}
	}
	cloned := cloneArticle(article)
	// slugs are fixed at creation
	cloned.Slug = current.Slug
	cloned.CreatedAt = current.CreatedAt
	r.byID[cloned.ID] = cloned
	return cloneArticle(cloned), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(record), nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: slug}
	}
	return cloneArticle(r.byID[id]), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Article, 0, len(r.byID))
	for _, record := range r.byID {
		out = append(out, cloneArticle(record))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	delete(r.bySlug, record.Slug)
	delete(r.byID, id)
	return nil
}

func sortNewestFirst(list []*Article) {
	slices.SortStableFunc(list, func(a, b *Article) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
}
