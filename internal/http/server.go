package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// DefaultPageSize is the public listing page size.
const DefaultPageSize = 10

// FeedService renders the syndication documents.
type FeedService interface {
	RSS(ctx context.Context) ([]byte, error)
	Sitemap(ctx context.Context) ([]byte, error)
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Site is the blog identity shown on rendered pages.
type Site struct {
	Title       string
	Description string
}

// Server holds the blog HTTP handlers.
type Server struct {
	articles     articles.Service
	friendLinks  friendlinks.Service
	feeds        FeedService
	health       HealthChecker
	metrics      *Metrics
	site         Site
	token        string
	pageSize     int
	allowOrigins []string
	compression  bool
	logger       interfaces.Logger
	templates    *template.Template
}

// Option mutates the server configuration.
type Option func(*Server)

func WithArticleService(service articles.Service) Option {
	return func(s *Server) {
		s.articles = service
	}
}

func WithFriendLinkService(service friendlinks.Service) Option {
	return func(s *Server) {
		s.friendLinks = service
	}
}

func WithFeeds(feeds FeedService) Option {
	return func(s *Server) {
		s.feeds = feeds
	}
}

func WithHealthCheck(check HealthChecker) Option {
	return func(s *Server) {
		s.health = check
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

func WithSite(site Site) Option {
	return func(s *Server) {
		s.site = site
	}
}

// WithInternalToken sets the token required on /api/internal/ requests.
func WithInternalToken(token string) Option {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithAllowedOrigins lists the origins that receive CORS headers on /api
// routes. "*" allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowOrigins = s.allowOrigins[:0]
		for _, origin := range origins {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				s.allowOrigins = append(s.allowOrigins, trimmed)
			}
		}
	}
}

// WithCompression toggles gzip responses.
func WithCompression(enabled bool) Option {
	return func(s *Server) {
		s.compression = enabled
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer constructs a Server. Services that are not provided answer with
// 503 on their routes.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		pageSize: DefaultPageSize,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("http: parse templates: %w", err)
	}
	s.templates = tmpl
	return s, nil
}

// Register attaches every route to mux.
func (s *Server) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	s.registerArticleRoutes(mux)
	s.registerFriendLinkRoutes(mux)
	s.registerFeedRoutes(mux)
	s.registerPageRoutes(mux)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return nil
}

// Handler returns the routed mux wrapped in the server middleware.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := s.Register(mux); err != nil {
		return nil, err
	}
	var handler http.Handler = mux
	if s.compression {
		handler = compress(handler)
	}
	handler = s.internalAuth(handler)
	handler = s.cors(handler)
	handler = s.observe(handler)
	return handler, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Check(r.Context()); err != nil {
			s.logger.Warn("http.health.failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func serviceUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Service Unavailable"})
}
