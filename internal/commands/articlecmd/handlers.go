package articlecmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goliatone/go-privateplot/internal/commands"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/internal/publish"
	"github.com/goliatone/go-privateplot/internal/remote"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

var (
	// ErrUnresolvedFailures is returned when a publish run ends with failures
	// that the retry wave did not fix.
	ErrUnresolvedFailures = errors.New("some articles failed to publish")
	ErrNotMarkdown        = errors.New("file must be a markdown file")
	ErrNotPublished       = errors.New("no article id found in frontmatter; the file might not have been published yet")
	ErrHostMismatch       = errors.New("article was published to a different host; use the correct host to delete it")
)

// Output is the operator-facing sink used by the handlers.
type Output interface {
	Info(message string)
	Success(message string)
	Warning(message string)
	Table(headers []string, rows [][]string)
}

// PublishHandler runs a publish batch.
type PublishHandler struct {
	inner *commands.Handler[PublishCommand]
}

// NewPublishHandler wires batch into the shared handler. onReport, when set,
// receives the finished report.
func NewPublishHandler(batch *publish.Batch, logger interfaces.Logger, onReport func(*publish.Report), opts ...commands.HandlerOption[PublishCommand]) *PublishHandler {
	exec := func(ctx context.Context, msg PublishCommand) error {
		report, err := batch.Run(ctx, msg.Path, publish.BatchOptions{
			Concurrency:   msg.Concurrency,
			AssumeYes:     msg.AssumeYes,
			IncludeDrafts: msg.IncludeDrafts,
			Exclude:       msg.Exclude,
		})
		if err != nil {
			return err
		}
		if onReport != nil {
			onReport(report)
		}
		if remaining := report.Remaining(); remaining > 0 {
			return fmt.Errorf("%w: %d remaining", ErrUnresolvedFailures, remaining)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishCommand]{
		commands.WithLogger[PublishCommand](logger),
		commands.WithOperation[PublishCommand]("articles.publish"),
		// the batch bounds each remote call itself
		commands.WithTimeout[PublishCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &PublishHandler{inner: commands.NewHandler[PublishCommand](exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishCommand].Execute.
func (h *PublishHandler) Execute(ctx context.Context, msg PublishCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ArticleDeleter is the remote API subset used by DeleteHandler.
type ArticleDeleter interface {
	Host() string
	DeleteArticle(ctx context.Context, id string) error
}

// DeleteHandler deletes the remote article behind a markdown file and clears
// the identity keys from the file.
type DeleteHandler struct {
	inner *commands.Handler[DeleteArticleCommand]
}

// NewDeleteHandler builds the delete handler.
func NewDeleteHandler(client ArticleDeleter, prompter publish.Prompter, out Output, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteArticleCommand]) *DeleteHandler {
	exec := func(ctx context.Context, msg DeleteArticleCommand) error {
		if !markdown.IsMarkdownFile(msg.Path) {
			return fmt.Errorf("%s: %w", msg.Path, ErrNotMarkdown)
		}
		info, err := os.Stat(msg.Path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(msg.Path)
		if err != nil {
			return err
		}
		doc, err := markdown.ParseDocument(string(raw))
		if err != nil {
			return err
		}

		rec := doc.Record
		if rec.ID() == "" {
			return ErrNotPublished
		}
		if remote.NormalizeHost(rec.Host()) != remote.NormalizeHost(client.Host()) {
			return fmt.Errorf("%w (published to %s)", ErrHostMismatch, rec.Host())
		}

		title := rec.Title()
		if title == "" {
			title = markdown.TitleFromFilename(msg.Path)
		}
		if !msg.AssumeYes {
			ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %q (%s)? The remote article will be permanently deleted.", title, msg.Path))
			if err != nil {
				return err
			}
			if !ok {
				out.Info("Delete operation cancelled")
				return nil
			}
		}

		out.Info("Deleting → " + title)
		if err := client.DeleteArticle(ctx, rec.ID()); err != nil {
			if !remote.IsNotFound(err) {
				return err
			}
			out.Warning("Article not found on server. It might have been deleted already")
		}

		rec.ClearIdentity()
		rendered, err := doc.Render()
		if err != nil {
			return err
		}
		if err := os.WriteFile(msg.Path, []byte(rendered), info.Mode().Perm()); err != nil {
			return fmt.Errorf("clear identity in %s: %w", msg.Path, err)
		}
		out.Success("Article deleted successfully")
		return nil
	}

	handlerOpts := []commands.HandlerOption[DeleteArticleCommand]{
		commands.WithLogger[DeleteArticleCommand](logger),
		commands.WithOperation[DeleteArticleCommand]("articles.delete"),
		// confirmation waits on the operator
		commands.WithTimeout[DeleteArticleCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &DeleteHandler{inner: commands.NewHandler[DeleteArticleCommand](exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteArticleCommand].Execute.
func (h *DeleteHandler) Execute(ctx context.Context, msg DeleteArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ArticleLister is the remote API subset used by ListHandler.
type ArticleLister interface {
	ListArticles(ctx context.Context) (*remote.ArticleList, error)
}

// ListHandler prints the remote articles as a table.
type ListHandler struct {
	inner *commands.Handler[ListArticlesCommand]
}

// NewListHandler builds the list handler.
func NewListHandler(client ArticleLister, out Output, logger interfaces.Logger, opts ...commands.HandlerOption[ListArticlesCommand]) *ListHandler {
	exec := func(ctx context.Context, _ ListArticlesCommand) error {
		out.Info("Fetching articles...")
		list, err := client.ListArticles(ctx)
		if err != nil {
			return err
		}
		if len(list.Articles) == 0 {
			out.Info("No articles found")
			return nil
		}

		rows := make([][]string, 0, len(list.Articles))
		for _, article := range list.Articles {
			id := article.ID
			if id == "" {
				id = "N/A"
			}
			updated := article.CreatedAt
			if article.UpdatedAt != nil && !article.UpdatedAt.IsZero() {
				updated = *article.UpdatedAt
			}
			rows = append(rows, []string{id, article.Title, updated.Local().Format(time.DateTime)})
		}
		out.Table([]string{"ID", "Title", "Last Updated"}, rows)
		out.Info("Total articles: " + strconv.Itoa(list.Total))
		return nil
	}

	handlerOpts := []commands.HandlerOption[ListArticlesCommand]{
		commands.WithLogger[ListArticlesCommand](logger),
		commands.WithOperation[ListArticlesCommand]("articles.list"),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &ListHandler{inner: commands.NewHandler[ListArticlesCommand](exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ListArticlesCommand].Execute.
func (h *ListHandler) Execute(ctx context.Context, msg ListArticlesCommand) error {
	return h.inner.Execute(ctx, msg)
}
