package articlecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	publishMessageType = "privateplot.articles.publish"
	deleteMessageType  = "privateplot.articles.delete"
	listMessageType    = "privateplot.articles.list"
)

// PublishCommand publishes a markdown file or every markdown file under a
// directory.
type PublishCommand struct {
	// Path is a markdown file or directory. Defaults to the working directory.
	Path string `json:"path"`
	// Concurrency bounds in-flight publishes. Zero means the default.
	Concurrency int `json:"concurrency,omitempty"`
	// AssumeYes skips the publish confirmation.
	AssumeYes bool `json:"assume_yes,omitempty"`
	// IncludeDrafts publishes files marked draft.
	IncludeDrafts bool `json:"include_drafts,omitempty"`
	// Exclude lists doublestar patterns relative to Path.
	Exclude []string `json:"exclude,omitempty"`
}

// Type implements command.Message.
func (PublishCommand) Type() string { return publishMessageType }

// Validate rejects non-positive concurrency before any file is touched.
func (m PublishCommand) Validate() error {
	errs := validation.Errors{}
	if m.Concurrency < 0 {
		errs["concurrency"] = validation.NewError("privateplot.articles.publish.concurrency_invalid", "concurrency must be a positive integer")
	}
	for _, pattern := range m.Exclude {
		if strings.TrimSpace(pattern) == "" {
			errs["exclude"] = validation.NewError("privateplot.articles.publish.exclude_empty", "exclude patterns cannot be empty")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DeleteArticleCommand removes the remote article a markdown file points at.
type DeleteArticleCommand struct {
	Path      string `json:"path"`
	AssumeYes bool   `json:"assume_yes,omitempty"`
}

// Type implements command.Message.
func (DeleteArticleCommand) Type() string { return deleteMessageType }

// Validate ensures a file path is present.
func (m DeleteArticleCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("privateplot.articles.delete.path_required", "path is required")
			}
			return nil
		})),
	)
}

// ListArticlesCommand prints the articles on the configured instance.
type ListArticlesCommand struct{}

// Type implements command.Message.
func (ListArticlesCommand) Type() string { return listMessageType }
