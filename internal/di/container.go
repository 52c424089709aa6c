package di

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-privateplot/internal/adapters/memory"
	"github.com/goliatone/go-privateplot/internal/adapters/noop"
	"github.com/goliatone/go-privateplot/internal/adapters/storage"
	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/feeds"
	"github.com/goliatone/go-privateplot/internal/friendlinks"
	privhttp "github.com/goliatone/go-privateplot/internal/http"
	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/internal/logging/console"
	"github.com/goliatone/go-privateplot/internal/logging/gologger"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/internal/runtimeconfig"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// Container wires the blog server from its runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	bunDB  *bun.DB
	ownsDB bool

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	feedCache     interfaces.CacheProvider

	renderer interfaces.MarkdownRenderer

	articleRepo articles.Repository
	linkRepo    friendlinks.Repository

	articleSvc articles.Service
	linkSvc    friendlinks.Service
	feedSvc    *feeds.Service

	probe   *storage.Probe
	metrics *privhttp.Metrics
	server  *privhttp.Server
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB uses an existing database instead of opening Storage.DSN. The
// caller keeps ownership and Close leaves it open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithLoggerProvider overrides the provider built from Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithCache overrides the repository cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithFeedCache overrides the cache that holds generated feed documents.
func WithFeedCache(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		c.feedCache = cache
	}
}

// WithRenderer overrides the markdown renderer built from Markdown.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// NewContainer validates cfg, opens storage, ensures the schema and builds
// every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureRenderer()

	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.configureHTTP(); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Info("container.configured",
		"storage", cfg.StorageDriver(),
		"cache", cfg.Cache.Enabled,
		"metrics", cfg.Features.Metrics,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "console":
			opts := console.Options{}
			if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
				opts.MinLevel = &level
			}
			c.loggerProvider = console.NewProvider(opts)
		default:
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "privateplot.container")
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB == nil {
		db, err := openBunDB(c.Config.StorageDriver(), c.Config.Storage.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}

	if err := articles.EnsureSchema(ctx, c.bunDB); err != nil {
		_ = c.Close()
		return fmt.Errorf("di: articles schema: %w", err)
	}
	if err := friendlinks.EnsureSchema(ctx, c.bunDB); err != nil {
		_ = c.Close()
		return fmt.Errorf("di: friend links schema: %w", err)
	}
	c.probe = storage.NewProbe(c.bunDB)
	return nil
}

func openBunDB(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("di: unsupported storage driver %q", driver)
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.TTL > 0 {
			cfg.TTL = c.Config.Cache.TTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("container.cache.disabled", "error", err)
		} else {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.cacheService != nil {
		c.articleRepo = articles.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.linkRepo = friendlinks.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return
	}
	c.articleRepo = articles.NewBunRepository(c.bunDB)
	c.linkRepo = friendlinks.NewBunRepository(c.bunDB)
}

func (c *Container) configureRenderer() {
	if c.renderer != nil {
		return
	}
	md := c.Config.Markdown
	c.renderer = markdown.NewGoldmarkRenderer(interfaces.RenderOptions{
		Extensions: md.Extensions,
		HardWraps:  md.HardWraps,
		SafeMode:   md.SafeMode,
		Highlight:  md.Highlight.Enabled,
		Style:      md.Highlight.Style,
	})
}

func (c *Container) configureServices() error {
	if c.feedCache == nil {
		if c.Config.Cache.Enabled {
			c.feedCache = memory.NewCache()
		} else {
			c.feedCache = noop.Cache()
		}
	}

	// The feed service reads from the article service, which notifies it on
	// writes, so the notifier resolves the feed service lazily.
	c.articleSvc = articles.NewService(c.articleRepo,
		articles.WithRenderer(c.renderer),
		articles.WithNotifier(articles.NotifierFunc(func(ctx context.Context, event articles.Event) {
			if c.feedSvc != nil {
				c.feedSvc.ArticleChanged(ctx, event)
			}
		})),
		articles.WithLogger(logging.ArticlesLogger(c.loggerProvider)),
	)
	c.linkSvc = friendlinks.NewService(c.linkRepo,
		friendlinks.WithLogger(logging.FriendLinksLogger(c.loggerProvider)),
	)

	feedSvc, err := feeds.NewService(c.articleSvc, feeds.Site{
		Title:       c.Config.Site.Title,
		Description: c.Config.Site.Description,
		URL:         c.Config.Site.URL,
	},
		feeds.WithCache(c.feedCache, c.Config.Cache.TTL),
		feeds.WithLogger(logging.FeedsLogger(c.loggerProvider)),
	)
	if err != nil {
		return fmt.Errorf("di: feeds: %w", err)
	}
	c.feedSvc = feedSvc
	return nil
}

func (c *Container) configureHTTP() error {
	if c.Config.Features.Metrics {
		c.metrics = privhttp.NewMetrics()
	}
	opts := []privhttp.Option{
		privhttp.WithArticleService(c.articleSvc),
		privhttp.WithFriendLinkService(c.linkSvc),
		privhttp.WithFeeds(c.feedSvc),
		privhttp.WithHealthCheck(c.probe),
		privhttp.WithSite(privhttp.Site{
			Title:       c.Config.Site.Title,
			Description: c.Config.Site.Description,
		}),
		privhttp.WithInternalToken(c.Config.InternalAuthToken),
		privhttp.WithPageSize(c.Config.API.PageSize),
		privhttp.WithAllowedOrigins(c.Config.API.AllowOrigins...),
		privhttp.WithCompression(c.Config.Features.Compression),
		privhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	}
	if c.metrics != nil {
		opts = append(opts, privhttp.WithMetrics(c.metrics))
	}
	server, err := privhttp.NewServer(opts...)
	if err != nil {
		return err
	}
	c.server = server
	if c.Config.InternalAuthToken == "" {
		c.logger.Warn("container.internal_token.missing")
	}
	return nil
}

// Handler returns the HTTP handler with middleware applied.
func (c *Container) Handler() (http.Handler, error) {
	return c.server.Handler()
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Logger returns the container logger.
func (c *Container) Logger() interfaces.Logger {
	return c.logger
}

// DB exposes the bun database.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// ArticleService returns the configured article service.
func (c *Container) ArticleService() articles.Service {
	return c.articleSvc
}

// FriendLinkService returns the configured friend link service.
func (c *Container) FriendLinkService() friendlinks.Service {
	return c.linkSvc
}

// FeedService returns the configured feed service.
func (c *Container) FeedService() *feeds.Service {
	return c.feedSvc
}

// Metrics returns the request metrics, or nil when disabled.
func (c *Container) Metrics() *privhttp.Metrics {
	return c.metrics
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}
