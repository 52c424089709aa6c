package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// AuthHeader carries the shared secret expected by the internal API.
const AuthHeader = "X-Internal-Auth-Token"

const (
	articlePath     = "/api/internal/article"
	articlesPath    = "/api/internal/articles"
	friendLinksPath = "/api/internal/friend-links"

	maxErrorBody = 64 << 10
)

const (
	msgMissingHost  = "no instance host configured, set it with `privateplot settings --host <host>` or PRIVATEPLOT_HOST"
	msgMissingToken = "no auth token found, set it with `privateplot settings --token <token>` or INTERNAL_AUTH_TOKEN"
)

// Config describes the instance the client talks to.
type Config struct {
	Host  string
	Token string
}

// Client calls the privateplot internal API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     interfaces.Logger
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client. Missing host or token is not an error here; it is
// reported by the first call that needs them.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Host returns the configured instance host as given.
func (c *Client) Host() string {
	return c.cfg.Host
}

// NormalizeHost strips the protocol prefix and trailing slashes so hosts can
// be compared regardless of how they were written.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

// BaseURL builds the scheme-qualified root URL for host: http for localhost,
// https for everything else.
func BaseURL(host string) string {
	clean := NormalizeHost(host)
	scheme := "https"
	if clean == "localhost" || strings.HasPrefix(clean, "localhost:") {
		scheme = "http"
	}
	return scheme + "://" + clean
}

// CreateArticle publishes a new article.
func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (*Article, error) {
	var out Article
	if err := c.do(ctx, http.MethodPut, articlePath, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateArticle replaces title, content and summary of an existing article.
func (c *Client) UpdateArticle(ctx context.Context, id string, in ArticleInput) (*Article, error) {
	payload := ArticleInput{Title: in.Title, Content: in.Content, Summary: in.Summary}
	var out Article
	if err := c.do(ctx, http.MethodPatch, articlePath, url.Values{"id": {id}}, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, articlePath, url.Values{"id": {id}}, nil, nil)
}

// ListArticles returns every article, newest first.
func (c *Client) ListArticles(ctx context.Context) (*ArticleList, error) {
	var out ArticleList
	if err := c.do(ctx, http.MethodGet, articlesPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFriendLinks returns all friend links.
func (c *Client) ListFriendLinks(ctx context.Context) ([]FriendLink, error) {
	var out []FriendLink
	if err := c.do(ctx, http.MethodGet, friendLinksPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFriendLink fetches a single friend link.
func (c *Client) GetFriendLink(ctx context.Context, id string) (*FriendLink, error) {
	var out FriendLink
	if err := c.do(ctx, http.MethodGet, friendLinkPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFriendLink adds a friend link.
func (c *Client) CreateFriendLink(ctx context.Context, in FriendLinkInput) (*FriendLink, error) {
	var out FriendLink
	if err := c.do(ctx, http.MethodPost, friendLinksPath, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFriendLink changes the non-nil fields of a friend link.
func (c *Client) UpdateFriendLink(ctx context.Context, id string, in FriendLinkInput) (*FriendLink, error) {
	var out FriendLink
	if err := c.do(ctx, http.MethodPut, friendLinkPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFriendLink removes a friend link.
func (c *Client) DeleteFriendLink(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, friendLinkPath(id), nil, nil, nil)
}

func friendLinkPath(id string) string {
	return friendLinksPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if strings.TrimSpace(c.cfg.Host) == "" {
		return ConfigurationError(msgMissingHost)
	}
	if strings.TrimSpace(c.cfg.Token) == "" {
		return ConfigurationError(msgMissingToken)
	}

	target := BaseURL(c.cfg.Host) + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil && method != http.MethodGet {
		payload, err := json.Marshal(body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(AuthHeader, c.cfg.Token)

	c.logger.Debug("remote.request", "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("remote.request.failed", "method", method, "url", target, "error", err)
		return networkError(method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("remote.request.rejected", "method", method, "url", target, "status", resp.StatusCode)
		return statusError(method, path, resp.StatusCode, detail)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, method+" "+path+": decode response").
			WithTextCode(TextCodeDecodeFailure)
	}
	return nil
}
