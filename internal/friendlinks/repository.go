package friendlinks

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrURLExists = errors.New("friendlinks: url already registered")

// Repository persists friend links. List returns the oldest link first.
type Repository interface {
	Create(ctx context.Context, link *FriendLink) (*FriendLink, error)
	Update(ctx context.Context, link *FriendLink) (*FriendLink, error)
	GetByID(ctx context.Context, id uuid.UUID) (*FriendLink, error)
	List(ctx context.Context) ([]*FriendLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a friend link does not exist.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("friend link %q not found", e.Key)
}

// NewFriendLinkRepository creates the go-repository-bun repository for friend links.
func NewFriendLinkRepository(db *bun.DB) repository.Repository[*FriendLink] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FriendLink]{
		NewRecord:          func() *FriendLink { return &FriendLink{} },
		GetID:              func(l *FriendLink) uuid.UUID { return l.ID },
		SetID:              func(l *FriendLink, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "url" },
		GetIdentifierValue: func(l *FriendLink) string { return l.URL },
	})
}

// EnsureSchema creates the friend_links table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*FriendLink)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create friend_links table: %w", err)
	}
	return nil
}
