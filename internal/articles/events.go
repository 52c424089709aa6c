package articles

import (
	"context"

	"github.com/google/uuid"
)

// EventType names a change to the article set.
type EventType string

const (
	EventCreated EventType = "article.created"
	EventUpdated EventType = "article.updated"
	EventDeleted EventType = "article.deleted"
)

// Event is emitted after an article write succeeds.
type Event struct {
	Type EventType
	ID   uuid.UUID
	Slug string
}

// Notifier receives article change events. Feed caches use it to drop
// stale documents.
type Notifier interface {
	ArticleChanged(ctx context.Context, event Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event)

func (f NotifierFunc) ArticleChanged(ctx context.Context, event Event) {
	f(ctx, event)
}
