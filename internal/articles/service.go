package articles

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// maxSlugAttempts bounds the numeric suffixes tried for a derived slug.
const maxSlugAttempts = 50

// CreateArticleRequest is the input for Create. A nil Summary means the
// summary is extracted from the content.
type CreateArticleRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Slug    string  `json:"slug,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// Validate checks the request before anything is stored.
func (r CreateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Slug, validation.Match(urlFriendlySlug).Error("slug must be URL friendly")),
	)
}

// UpdateArticleRequest carries the fields to change. The slug never changes.
type UpdateArticleRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

// Validate rejects an explicitly empty title.
func (r UpdateArticleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
	)
}

// Page is one page of the public article listing.
type Page struct {
	Articles []*Article
	HasMore  bool
	Total    int
}

// Service manages articles.
type Service interface {
	Create(ctx context.Context, req CreateArticleRequest) (*Article, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateArticleRequest) (*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context) ([]*Article, error)
	ListMetadata(ctx context.Context) ([]Metadata, error)
	Page(ctx context.Context, page, size int) (*Page, error)
}

// IDGenerator produces article ids.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithRenderer sets the markdown renderer used to pre-render articles.
func WithRenderer(renderer interfaces.MarkdownRenderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithNotifier registers listeners for article changes.
func WithNotifier(notifiers ...Notifier) ServiceOption {
	return func(s *service) {
		for _, n := range notifiers {
			if n != nil {
				s.notifiers = append(s.notifiers, n)
			}
		}
	}
}

func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen IDGenerator) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithRandomSlug overrides the fallback slug generator.
func WithRandomSlug(gen func() string) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.randomSlug = gen
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo       Repository
	renderer   interfaces.MarkdownRenderer
	notifiers  []Notifier
	now        func() time.Time
	newID      IDGenerator
	randomSlug func() string
	logger     interfaces.Logger
}

// NewService builds the article service.
func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:       repo,
		renderer:   markdown.NewGoldmarkRenderer(interfaces.RenderOptions{Highlight: true}),
		now:        time.Now,
		newID:      uuid.New,
		randomSlug: RandomSlug,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid article")
	}

	meta, body := s.extractMeta(req.Content)
	rendered, err := s.render(body)
	if err != nil {
		return nil, err
	}
	slug, err := s.resolveSlug(ctx, req.Title, req.Slug)
	if err != nil {
		return nil, err
	}

	summary := markdown.ExtractSummary(body, markdown.DefaultSummaryLength)
	if req.Summary != nil {
		summary = *req.Summary
	}

	now := s.now().UTC()
	record, err := s.repo.Create(ctx, &Article{
		ID:        s.newID(),
		Title:     strings.TrimSpace(req.Title),
		Content:   body,
		Slug:      slug,
		Summary:   summary,
		Rendered:  rendered,
		Meta:      meta,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, ErrSlugExists) {
			return nil, slugConflict(slug)
		}
		return nil, err
	}

	s.logger.Info("articles.created", "id", record.ID, "slug", record.Slug)
	s.notify(ctx, Event{Type: EventCreated, ID: record.ID, Slug: record.Slug})
	return record, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateArticleRequest) (*Article, error) {
	if err := req.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid article update")
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		record.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		meta, body := s.extractMeta(*req.Content)
		rendered, err := s.render(body)
		if err != nil {
			return nil, err
		}
		record.Content = body
		record.Meta = meta
		record.Rendered = rendered
		if req.Summary == nil {
			record.Summary = markdown.ExtractSummary(body, markdown.DefaultSummaryLength)
		}
	}
	if req.Summary != nil {
		record.Summary = *req.Summary
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("articles.updated", "id", updated.ID, "slug", updated.Slug)
	s.notify(ctx, Event{Type: EventUpdated, ID: updated.ID, Slug: updated.Slug})
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("articles.deleted", "id", id, "slug", record.Slug)
	s.notify(ctx, Event{Type: EventDeleted, ID: id, Slug: record.Slug})
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) List(ctx context.Context) ([]*Article, error) {
	return s.repo.List(ctx)
}

func (s *service) ListMetadata(ctx context.Context) ([]Metadata, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Metadata, 0, len(records))
	for _, record := range records {
		out = append(out, record.Metadata())
	}
	return out, nil
}

// Page returns the 1-based page of the newest-first listing. Pages below 1
// are treated as the first page.
func (s *service) Page(ctx context.Context, page, size int) (*Page, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	page = max(page, 1)
	size = max(size, 1)

	start := min((page-1)*size, len(records))
	end := min(start+size, len(records))
	return &Page{
		Articles: records[start:end],
		HasMore:  len(records) > end,
		Total:    len(records),
	}, nil
}

// extractMeta strips leading frontmatter. Keys owned by the publishing tool
// are dropped; a document whose frontmatter cannot be parsed is stored as is.
func (s *service) extractMeta(content string) (map[string]any, string) {
	meta, body, err := markdown.SplitFrontmatter(content)
	if err != nil {
		s.logger.Warn("articles.frontmatter.invalid", "error", err)
		return nil, strings.TrimSpace(content)
	}
	kept := markdown.ArticleMeta(meta)
	if len(kept) == 0 {
		kept = nil
	}
	return kept, body
}

func (s *service) render(body string) (string, error) {
	html, err := s.renderer.Render([]byte(body))
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render article markdown")
	}
	return string(html), nil
}

// resolveSlug keeps a requested slug when it is free and derives one from
// the title otherwise. Derived slugs get a numeric suffix on collision.
func (s *service) resolveSlug(ctx context.Context, title, requested string) (string, error) {
	if requested != "" {
		taken, err := s.slugTaken(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", slugConflict(requested)
		}
		return requested, nil
	}

	base := SlugFromTitle(title)
	if base == "" {
		base = s.randomSlug()
	}
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		taken, err := s.slugTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = withSuffix(base, attempt)
	}
	return base + "-" + s.randomSlug(), nil
}

func (s *service) slugTaken(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.GetBySlug(ctx, slug)
	if err == nil {
		return true, nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (s *service) notify(ctx context.Context, event Event) {
	for _, n := range s.notifiers {
		n.ArticleChanged(ctx, event)
	}
}

func slugConflict(slug string) error {
	return goerrors.Wrap(ErrSlugExists, goerrors.CategoryConflict, "slug "+slug+" is already in use").
		WithCode(409).
		WithTextCode("ARTICLE_SLUG_EXISTS")
}
