package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/internal/remote"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const (
	// MaxRetries bounds the retries after a failed remote call.
	MaxRetries = 2
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = time.Second
	// DefaultRequestTimeout caps a single remote call.
	DefaultRequestTimeout = 30 * time.Second
)

// Status is the terminal state of a file evaluation.
type Status string

const (
	StatusPublished Status = "published"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Action is the remote operation chosen for a file.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

const (
	ReasonDraft     = "draft"
	ReasonUnchanged = "unchanged"
)

// ArticleClient is the subset of the remote API the engine calls.
type ArticleClient interface {
	Host() string
	CreateArticle(ctx context.Context, in remote.ArticleInput) (*remote.Article, error)
	UpdateArticle(ctx context.Context, id string, in remote.ArticleInput) (*remote.Article, error)
}

var _ ArticleClient = (*remote.Client)(nil)

// FileOptions tunes a single evaluation.
type FileOptions struct {
	// Force publishes drafts.
	Force bool
}

// Outcome describes how a file evaluation ended.
type Outcome struct {
	Path      string
	Title     string
	Status    Status
	Action    Action
	ArticleID string
	// Attempts counts evaluation rounds spent, including the first.
	Attempts  int
	Err       error
	AuthError bool
	Reason    string
}

// Retries reports how many retries were spent.
func (o Outcome) Retries() int {
	if o.Attempts <= 1 {
		return 0
	}
	return o.Attempts - 1
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNow overrides the clock used for publish timestamps.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSleep overrides how the engine waits between attempts.
func WithSleep(sleep func(context.Context, time.Duration) error) EngineOption {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithRetryDelay changes the fixed delay between attempts.
func WithRetryDelay(delay time.Duration) EngineOption {
	return func(e *Engine) {
		if delay >= 0 {
			e.retryDelay = delay
		}
	}
}

// WithRequestTimeout bounds every remote call. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) EngineOption {
	return func(e *Engine) {
		if timeout >= 0 {
			e.requestTimeout = timeout
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine decides, per markdown file, whether to skip, create or update the
// remote article and writes the resulting identity back into the file.
type Engine struct {
	client         ArticleClient
	now            func() time.Time
	sleep          func(context.Context, time.Duration) error
	retryDelay     time.Duration
	requestTimeout time.Duration
	logger         interfaces.Logger
}

// NewEngine builds an engine on top of client.
func NewEngine(client ArticleClient, opts ...EngineOption) *Engine {
	e := &Engine{
		client:         client,
		now:            time.Now,
		sleep:          sleepContext,
		retryDelay:     DefaultRetryDelay,
		requestTimeout: DefaultRequestTimeout,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Publish evaluates one file. It never panics on file or remote failures; every
// error ends up in the returned Outcome.
func (e *Engine) Publish(ctx context.Context, path string, opts FileOptions) Outcome {
	outcome := Outcome{Path: path, Title: markdown.TitleFromFilename(path)}

	for attempt := 0; ; attempt++ {
		logger := logging.WithSyncContext(e.logger, path, "", attempt+1)

		file, err := loadFile(path)
		if err != nil {
			if attempt > 0 {
				outcome.Attempts = attempt + 1
			}
			if !retryable(err) || attempt >= MaxRetries {
				return e.fail(logger, outcome, err)
			}
			if sleepErr := e.backoff(ctx, logger, err); sleepErr != nil {
				return e.fail(logger, outcome, sleepErr)
			}
			continue
		}
		outcome.Title = file.title()

		if attempt == 0 {
			if file.doc.Record.Draft() && !opts.Force {
				logger.Debug("publish.file.skipped", "reason", ReasonDraft)
				outcome.Status, outcome.Action, outcome.Reason = StatusSkipped, ActionSkip, ReasonDraft
				return outcome
			}
			if !file.changed() {
				logger.Debug("publish.file.skipped", "reason", ReasonUnchanged)
				outcome.Status, outcome.Action, outcome.Reason = StatusSkipped, ActionSkip, ReasonUnchanged
				return outcome
			}
		}

		outcome.Action = e.route(file.doc.Record)
		logger = logging.WithSyncContext(e.logger, path, string(outcome.Action), attempt+1)
		outcome.Attempts = attempt + 1

		article, err := e.call(ctx, outcome.Action, file)
		if err == nil {
			if err := e.writeBack(file, outcome.Action, article); err != nil {
				return e.fail(logger, outcome, err)
			}
			if article != nil {
				outcome.ArticleID = article.ID
			}
			if outcome.ArticleID == "" {
				outcome.ArticleID = file.doc.Record.ID()
			}
			outcome.Status = StatusPublished
			outcome.Err = nil
			outcome.AuthError = false
			logger.Info("publish.file.completed", "article_id", outcome.ArticleID)
			return outcome
		}

		outcome.Err = err
		outcome.AuthError = remote.IsAuthError(err)
		if !retryable(err) || attempt >= MaxRetries {
			return e.fail(logger, outcome, err)
		}

		if sleepErr := e.backoff(ctx, logger, err); sleepErr != nil {
			return e.fail(logger, outcome, sleepErr)
		}
	}
}

func (e *Engine) backoff(ctx context.Context, logger interfaces.Logger, cause error) error {
	logger.Warn("publish.file.retry", "error", cause, "delay", e.retryDelay)
	return e.sleep(ctx, e.retryDelay)
}

// Route reports the remote operation a record maps to against the current
// instance host: update when the record carries an id for the same host.
func Route(rec *markdown.Record, host string) Action {
	if rec == nil || strings.TrimSpace(rec.ID()) == "" {
		return ActionCreate
	}
	if remote.NormalizeHost(rec.Host()) != remote.NormalizeHost(host) {
		return ActionCreate
	}
	return ActionUpdate
}

func (e *Engine) route(rec *markdown.Record) Action {
	return Route(rec, e.client.Host())
}

func (e *Engine) call(ctx context.Context, action Action, file *sourceFile) (*remote.Article, error) {
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	in := remote.ArticleInput{
		Title:   file.title(),
		Content: file.doc.Body,
		Summary: file.summary(),
	}
	if action == ActionUpdate {
		return e.client.UpdateArticle(ctx, file.doc.Record.ID(), in)
	}
	in.Slug = file.doc.Record.Slug()
	return e.client.CreateArticle(ctx, in)
}

func (e *Engine) writeBack(file *sourceFile, action Action, article *remote.Article) error {
	rec := file.doc.Record
	if action == ActionCreate {
		if article == nil || strings.TrimSpace(article.ID) == "" {
			return fmt.Errorf("publish %s: instance returned no article id", file.path)
		}
		rec.SetIdentity(article.ID, e.client.Host())
	}

	publishedAt := e.now().UTC().Truncate(time.Second)
	rec.SetLastPublished(publishedAt)

	rendered, err := file.doc.Render()
	if err != nil {
		return fmt.Errorf("publish %s: %w", file.path, err)
	}
	if err := os.WriteFile(file.path, []byte(rendered), file.mode); err != nil {
		return fmt.Errorf("publish %s: write back: %w", file.path, err)
	}
	// keep the file from looking modified after its own write-back
	if err := os.Chtimes(file.path, publishedAt, publishedAt); err != nil {
		return fmt.Errorf("publish %s: stamp mtime: %w", file.path, err)
	}
	return nil
}

func (e *Engine) fail(logger interfaces.Logger, outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Err = err
	outcome.AuthError = remote.IsAuthError(err)
	if outcome.Action == "" {
		outcome.Action = ActionSkip
	}
	logger.Error("publish.file.failed", "error", err, "auth_error", outcome.AuthError)
	return outcome
}

// retryable separates remote and IO failures from errors no retry can fix.
func retryable(err error) bool {
	var parseErr *markdown.FrontmatterParseError
	switch {
	case errors.As(err, &parseErr):
		return false
	case remote.IsConfigurationError(err):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type sourceFile struct {
	path    string
	mode    os.FileMode
	modTime time.Time
	doc     *markdown.Document
}

func loadFile(path string) (*sourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", path, err)
	}
	doc, err := markdown.ParseDocument(string(raw))
	if err != nil {
		var parseErr *markdown.FrontmatterParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return nil, err
	}
	return &sourceFile{path: path, mode: info.Mode().Perm(), modTime: info.ModTime(), doc: doc}, nil
}

// changed reports whether the file was modified strictly after its last
// publish. Files never published, or with an unreadable stamp, count as changed.
func (f *sourceFile) changed() bool {
	last, ok := f.doc.Record.LastPublished()
	if !ok {
		return true
	}
	return f.modTime.After(last)
}

func (f *sourceFile) title() string {
	if title := strings.TrimSpace(f.doc.Record.Title()); title != "" {
		return title
	}
	return markdown.TitleFromFilename(f.path)
}

func (f *sourceFile) summary() string {
	if summary := strings.TrimSpace(f.doc.Record.Summary()); summary != "" {
		return summary
	}
	return markdown.TitleFromFilename(f.path)
}
