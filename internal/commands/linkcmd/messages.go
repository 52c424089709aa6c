package linkcmd

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	listMessageType   = "privateplot.links.list"
	addMessageType    = "privateplot.links.add"
	updateMessageType = "privateplot.links.update"
	removeMessageType = "privateplot.links.remove"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ListLinksCommand prints every friend link.
type ListLinksCommand struct{}

// Type implements command.Message.
func (ListLinksCommand) Type() string { return listMessageType }

// AddLinkCommand creates a friend link.
type AddLinkCommand struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Type implements command.Message.
func (AddLinkCommand) Type() string { return addMessageType }

// Validate mirrors the server rules so bad input fails before a request.
func (m AddLinkCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.URL, validation.Required, validation.By(webURL)),
		validation.Field(&m.Avatar, validation.By(webURL)),
		validation.Field(&m.Status, validation.In(StatusActive, StatusInactive)),
	)
}

// UpdateLinkCommand changes the fields that are set.
type UpdateLinkCommand struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Type implements command.Message.
func (UpdateLinkCommand) Type() string { return updateMessageType }

// Validate requires an id and at least one change.
func (m UpdateLinkCommand) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Name, validation.NilOrNotEmpty),
		validation.Field(&m.URL, validation.NilOrNotEmpty, validation.By(webURL)),
		validation.Field(&m.Avatar, validation.By(webURL)),
		validation.Field(&m.Status, validation.In(StatusActive, StatusInactive)),
	)
	if err != nil {
		return err
	}
	if m.Name == nil && m.URL == nil && m.Description == nil && m.Avatar == nil && m.Status == nil {
		return validation.Errors{
			"fields": validation.NewError("privateplot.links.update.empty", "at least one field must change"),
		}
	}
	return nil
}

// RemoveLinkCommand deletes a friend link.
type RemoveLinkCommand struct {
	ID        string `json:"id"`
	AssumeYes bool   `json:"assume_yes,omitempty"`
}

// Type implements command.Message.
func (RemoveLinkCommand) Type() string { return removeMessageType }

// Validate requires the link id.
func (m RemoveLinkCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
	)
}

// webURL accepts empty values and absolute http(s) URLs.
func webURL(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.New("must be a valid URL")
	}
	return nil
}
