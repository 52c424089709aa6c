package articles

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrSlugExists = errors.New("articles: slug already in use")

// Repository persists articles. List returns the newest article first.
type Repository interface {
	Create(ctx context.Context, article *Article) (*Article, error)
	Update(ctx context.Context, article *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context) ([]*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when an article does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewArticleRepository creates the go-repository-bun repository for articles.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(a *Article) uuid.UUID { return a.ID },
		SetID:              func(a *Article, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(a *Article) string { return a.Slug },
	})
}

// EnsureSchema creates the articles table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Article)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create articles table: %w", err)
	}
	return nil
}
