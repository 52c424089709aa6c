package articles

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Article is a published blog post. Content is stored without frontmatter;
// Rendered holds the HTML produced when the article was last written.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID        uuid.UUID      `bun:",pk,type:uuid"                                 json:"id"`
	Title     string         `bun:"title,notnull"                                 json:"title"`
	Content   string         `bun:"content,notnull"                               json:"content"`
	Slug      string         `bun:"slug,notnull,unique"                           json:"slug"`
	Summary   string         `bun:"summary,notnull"                               json:"summary"`
	Rendered  string         `bun:"rendered"                                      json:"rendered,omitempty"`
	Meta      map[string]any `bun:"meta,type:jsonb"                               json:"meta,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Metadata is the listing view of an article, without content.
type Metadata struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Summary   string         `json:"summary"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Metadata projects the article onto its listing view.
func (a *Article) Metadata() Metadata {
	return Metadata{
		ID:        a.ID,
		Title:     a.Title,
		Slug:      a.Slug,
		Summary:   a.Summary,
		Meta:      maps.Clone(a.Meta),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// LastModified is the update time, or the creation time for articles that
// were never edited.
func (a *Article) LastModified() time.Time {
	if a.UpdatedAt.After(a.CreatedAt) {
		return a.UpdatedAt
	}
	return a.CreatedAt
}

func cloneArticle(a *Article) *Article {
	if a == nil {
		return nil
	}
	cloned := *a
	cloned.Meta = maps.Clone(a.Meta)
	return &cloned
}
