package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-privateplot/internal/adapters/memory"
	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// Cache keys for the generated documents.
const (
	KeyRSS     = "feeds:rss"
	KeySitemap = "feeds:sitemap"
)

// DefaultCacheTTL bounds how long a generated document is served from cache.
const DefaultCacheTTL = time.Hour

const (
	rootRSS     = "rss"
	rootSitemap = "urlset"
)

// ArticleSource lists articles newest first.
type ArticleSource interface {
	List(ctx context.Context) ([]*articles.Article, error)
}

// Site describes the blog in feed channel metadata.
type Site struct {
	Title       string
	Description string
	URL         string
}

// Option configures the feed service.
type Option func(*Service)

// WithCache sets the document cache and its ttl. A nil cache disables caching.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStaticPages replaces the non-article sitemap entries.
func WithStaticPages(pages ...StaticPage) Option {
	return func(s *Service) {
		s.pages = append([]StaticPage(nil), pages...)
	}
}

// Service renders the RSS feed and the sitemap and caches the output until
// an article changes.
type Service struct {
	source ArticleSource
	site   Site
	links  *Links
	cache  interfaces.CacheProvider
	ttl    time.Duration
	pages  []StaticPage
	now    func() time.Time
	logger interfaces.Logger
}

var _ articles.Notifier = (*Service)(nil)

func NewService(source ArticleSource, site Site, opts ...Option) (*Service, error) {
	links, err := NewLinks(site.URL)
	if err != nil {
		return nil, err
	}
	s := &Service{
		source: source,
		site:   site,
		links:  links,
		cache:  memory.NewCache(),
		ttl:    DefaultCacheTTL,
		pages:  DefaultStaticPages(),
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Links exposes the URL builder shared with the HTTP layer.
func (s *Service) Links() *Links {
	return s.links
}

// RSS returns the RSS 2.0 feed.
func (s *Service) RSS(ctx context.Context) ([]byte, error) {
	return s.document(ctx, KeyRSS, rootRSS, s.buildRSS)
}

// Sitemap returns the sitemap.xml document.
func (s *Service) Sitemap(ctx context.Context) ([]byte, error) {
	return s.document(ctx, KeySitemap, rootSitemap, s.buildSitemap)
}

// Invalidate drops both cached documents.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, key := range []string{KeyRSS, KeySitemap} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("feeds.cache.delete_failed", "key", key, "error", err)
		}
	}
}

// ArticleChanged invalidates the cached documents.
func (s *Service) ArticleChanged(ctx context.Context, event articles.Event) {
	s.logger.Debug("feeds.invalidate", "event", string(event.Type), "slug", event.Slug)
	s.Invalidate(ctx)
}

func (s *Service) document(ctx context.Context, key, root string, build func([]*articles.Article) ([]byte, error)) ([]byte, error) {
	if cached := s.cached(ctx, key, root); cached != nil {
		return cached, nil
	}

	list, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feeds: list articles: %w", err)
	}
	data, err := build(list)
	if err != nil {
		return nil, fmt.Errorf("feeds: build %s: %w", root, err)
	}

	if err := ValidateXML(data, root); err != nil {
		s.logger.Error("feeds.generated.invalid", "key", key, "error", err)
		return data, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("feeds.cache.set_failed", "key", key, "error", err)
		}
	}
	return data, nil
}

// cached returns a stored document after checking it is still valid XML.
// Invalid entries are evicted.
func (s *Service) cached(ctx context.Context, key, root string) []byte {
	if s.cache == nil {
		return nil
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil || value == nil {
		return nil
	}
	data, ok := value.([]byte)
	if ok {
		if err = ValidateXML(data, root); err == nil {
			return data
		}
	}
	s.logger.Warn("feeds.cache.invalid", "key", key, "error", err)
	_ = s.cache.Delete(ctx, key)
	return nil
}
