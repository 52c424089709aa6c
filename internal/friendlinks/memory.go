package friendlinks

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps friend links in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*FriendLink
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[uuid.UUID]*FriendLink)}
}

func (r *MemoryRepository) Create(_ context.Context, link *FriendLink) (*FriendLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.links[link.ID]; exists {
		return nil, ErrURLExists
	}
	r.links[link.ID] = cloneLink(link)
	return cloneLink(link), nil
}

func (r *MemoryRepository) Update(_ context.Context, link *FriendLink) (*FriendLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.links[link.ID]
	if !ok {
		return nil, &NotFoundError{Key: link.ID.String()}
	}
	cloned := cloneLink(link)
	cloned.CreatedAt = current.CreatedAt
	r.links[link.ID] = cloned
	return cloneLink(cloned), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*FriendLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneLink(link), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*FriendLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*FriendLink, 0, len(r.links))
	for _, link := range r.links {
		out = append(out, cloneLink(link))
	}
	slices.SortStableFunc(out, func(a, b *FriendLink) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.URL, b.URL)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(r.links, id)
	return nil
}
