package friendlinks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status values accepted for a friend link.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// FriendLink is a link to another site shown on the blog.
type FriendLink struct {
	bun.BaseModel `bun:"table:friend_links,alias:fl"`

	ID          uuid.UUID `bun:",pk,type:uuid"                                         json:"id"`
	Name        string    `bun:"name,notnull"                                          json:"name"`
	URL         string    `bun:"url,notnull,unique"                                    json:"url"`
	Description string    `bun:"description"                                           json:"description,omitempty"`
	Avatar      string    `bun:"avatar"                                                json:"avatar,omitempty"`
	Status      string    `bun:"status,notnull,default:'active'"                       json:"status"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Active reports whether the link should be shown.
func (l *FriendLink) Active() bool {
	return l != nil && l.Status == StatusActive
}

func cloneLink(l *FriendLink) *FriendLink {
	if l == nil {
		return nil
	}
	cloned := *l
	return &cloned
}
