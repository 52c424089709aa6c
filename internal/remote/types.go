package remote

import "time"

// ArticleInput is the payload accepted by the create and update endpoints.
// Slug is only honoured on create.
type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary,omitempty"`
	Slug    string `json:"slug,omitempty"`
}

// Article is the article representation returned by the instance.
type Article struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Summary   string     `json:"summary,omitempty"`
	Slug      string     `json:"slug,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ArticleListing is a row of the internal article listing.
type ArticleListing struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// ArticleList is the internal article listing response.
type ArticleList struct {
	Articles []ArticleListing `json:"articles"`
	Total    int              `json:"total"`
}

// FriendLink mirrors the instance friend link record.
type FriendLink struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// FriendLinkInput carries friend link fields. Nil pointers are left out of
// update requests so the instance keeps the current value.
type FriendLinkInput struct {
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Status      *string `json:"status,omitempty"`
}
