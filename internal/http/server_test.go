package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/feeds"
	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/internal/markdown"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const testToken = "secret-token"

type fixture struct {
	handler  http.Handler
	articles articles.Service
	links    friendlinks.Service
	now      *time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	var feedService *feeds.Service
	articleSvc := articles.NewService(articles.NewMemoryRepository(),
		articles.WithNow(clock),
		articles.WithRenderer(markdown.NewGoldmarkRenderer(interfaces.RenderOptions{})),
		articles.WithNotifier(articles.NotifierFunc(func(ctx context.Context, event articles.Event) {
			feedService.ArticleChanged(ctx, event)
		})),
	)
	var err error
	feedService, err = feeds.NewService(articleSvc, feeds.Site{
		Title:       "Plot",
		Description: "A private plot",
		URL:         "https://blog.example.com",
	}, feeds.WithNow(clock))
	if err != nil {
		t.Fatalf("feeds: %v", err)
	}
	linkSvc := friendlinks.NewService(friendlinks.NewMemoryRepository(), friendlinks.WithNow(clock))

	base := []Option{
		WithArticleService(articleSvc),
		WithFriendLinkService(linkSvc),
		WithFeeds(feedService),
		WithSite(Site{Title: "Plot", Description: "A private plot"}),
		WithInternalToken(testToken),
		WithAllowedOrigins("https://app.example.com"),
	}
	server, err := NewServer(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	handler, err := server.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return &fixture{handler: handler, articles: articleSvc, links: linkSvc, now: &now}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) internal(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, method, target, body, map[string]string{tokenHeader: testToken})
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestInternalAuth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/internal/articles", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != msgUnauthorized {
		t.Fatalf("unexpected body %+v", got)
	}

	rec = f.do(t, http.MethodGet, "/api/internal/articles", "", map[string]string{tokenHeader: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong token, got %d", rec.Code)
	}

	rec = f.internal(t, http.MethodGet, "/api/internal/articles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	unconfigured := newFixture(t, WithInternalToken(""))
	rec = unconfigured.do(t, http.MethodGet, "/api/internal/articles", "", map[string]string{tokenHeader: "anything"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when no token is configured, got %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != msgMisconfig {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodOptions, "/api/internal/article", "", map[string]string{"Origin": "https://app.example.com"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	h := rec.Header()
	if h.Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("unexpected allow origin %q", h.Get("Access-Control-Allow-Origin"))
	}
	if h.Get("Access-Control-Allow-Methods") != corsAllowMethods || h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("missing cors headers: %+v", h)
	}

	rec = f.do(t, http.MethodGet, "/api/articles", "", map[string]string{"Origin": "https://evil.example.com"})
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected no cors headers for unknown origin")
	}
}

func TestArticleLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.internal(t, http.MethodPut, "/api/internal/article", `{"title":"Hello World","content":"# Hi\n\nFirst paragraph."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[articleResponse](t, rec)
	if created.Slug != "hello-world" || created.Summary != "First paragraph." {
		t.Fatalf("unexpected created article %+v", created)
	}
	if strings.Contains(rec.Body.String(), "rendered") {
		t.Fatalf("internal response must not carry rendered html")
	}

	*f.now = f.now.Add(time.Hour)
	rec = f.internal(t, http.MethodPatch, "/api/internal/article?id="+created.ID.String(), `{"title":"Hello Again"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on patch, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[articleResponse](t, rec)
	if updated.Title != "Hello Again" || updated.Slug != "hello-world" {
		t.Fatalf("unexpected patched article %+v", updated)
	}

	rec = f.internal(t, http.MethodGet, "/api/internal/articles", "")
	listing := decode[internalListing](t, rec)
	if listing.Total != 1 || listing.Articles[0].Title != "Hello Again" {
		t.Fatalf("unexpected internal listing %+v", listing)
	}

	rec = f.internal(t, http.MethodDelete, "/api/internal/article?id="+created.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = f.internal(t, http.MethodDelete, "/api/internal/article?id="+created.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestArticleValidationAndErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.internal(t, http.MethodPut, "/api/internal/article", `{"title":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Error != msgValidation || len(body.Details) == 0 {
		t.Fatalf("expected validation details, got %+v", body)
	}

	rec = f.internal(t, http.MethodPut, "/api/internal/article", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}

	rec = f.internal(t, http.MethodPatch, "/api/internal/article?id=not-a-uuid", `{"title":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for malformed id, got %d", rec.Code)
	}

	payload := `{"title":"Fixed","content":"body","slug":"fixed-slug"}`
	if rec = f.internal(t, http.MethodPut, "/api/internal/article", payload); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec = f.internal(t, http.MethodPut, "/api/internal/article", payload); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused slug, got %d", rec.Code)
	}
}

func TestPublicArticlePaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 12 {
		*f.now = f.now.Add(time.Minute)
		if _, err := f.articles.Create(ctx, articles.CreateArticleRequest{
			Title:   "Post " + string(rune('A'+i)),
			Content: "body",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	first := decode[publicListing](t, f.do(t, http.MethodGet, "/api/articles", "", nil))
	if len(first.Articles) != DefaultPageSize || !first.HasMore || first.Total != 12 {
		t.Fatalf("unexpected first page %+v", first)
	}
	if first.Articles[0].Slug != "post-l" {
		t.Fatalf("expected newest first, got %q", first.Articles[0].Slug)
	}

	second := decode[publicListing](t, f.do(t, http.MethodGet, "/api/articles?page=2", "", nil))
	if len(second.Articles) != 2 || second.HasMore {
		t.Fatalf("unexpected second page %+v", second)
	}

	junk := decode[publicListing](t, f.do(t, http.MethodGet, "/api/articles?page=abc", "", nil))
	if junk.Articles[0].Slug != "post-l" {
		t.Fatalf("expected non numeric page to act as page 1")
	}
}

func TestFriendLinkRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.internal(t, http.MethodPost, "/api/internal/friend-links", `{"name":"Alice","url":"https://alice.example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	link := decode[friendlinks.FriendLink](t, rec)
	if link.Status != friendlinks.StatusActive {
		t.Fatalf("expected default active status, got %q", link.Status)
	}

	rec = f.internal(t, http.MethodPost, "/api/internal/friend-links", `{"name":"Alice again","url":"https://ALICE.example.com/"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate url, got %d", rec.Code)
	}

	rec = f.internal(t, http.MethodPost, "/api/internal/friend-links", `{"name":"Bob","url":"ftp://bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad url, got %d", rec.Code)
	}

	rec = f.internal(t, http.MethodPut, "/api/internal/friend-links/"+link.ID.String(), `{"status":"inactive"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	public := decode[[]friendlinks.FriendLink](t, f.do(t, http.MethodGet, "/api/friend-links", "", nil))
	if len(public) != 0 {
		t.Fatalf("expected inactive link hidden publicly, got %+v", public)
	}
	all := decode[[]friendlinks.FriendLink](t, f.internal(t, http.MethodGet, "/api/internal/friend-links", ""))
	if len(all) != 1 {
		t.Fatalf("expected one link internally, got %d", len(all))
	}

	if rec = f.internal(t, http.MethodDelete, "/api/internal/friend-links/"+link.ID.String(), ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = f.internal(t, http.MethodGet, "/api/internal/friend-links/"+link.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Error != msgLinkNotFound {
		t.Fatalf("unexpected not found body %+v", got)
	}
}

func TestFeedsAndPages(t *testing.T) {
	f := newFixture(t)
	if _, err := f.articles.Create(context.Background(), articles.CreateArticleRequest{
		Title:   "Feed Me",
		Content: "Some **bold** text.",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/rss.xml", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/xml" {
		t.Fatalf("unexpected rss response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "https://blog.example.com/article/feed-me/") {
		t.Fatalf("expected article link in rss, got %s", rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/sitemap.xml", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<urlset") {
		t.Fatalf("unexpected sitemap %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/article/feed-me/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<strong>bold</strong>") {
		t.Fatalf("unexpected article page %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/article/missing/", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 page, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `href="/article/feed-me/"`) {
		t.Fatalf("unexpected index page %d %s", rec.Code, rec.Body.String())
	}
}

type failingCheck struct{ err error }

func (c failingCheck) Check(context.Context) error { return c.err }

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected healthy, got %d", rec.Code)
	}

	down := newFixture(t, WithHealthCheck(failingCheck{err: errors.New("db down")}))
	if rec := down.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, WithMetrics(NewMetrics()))
	f.do(t, http.MethodGet, "/api/articles", "", nil)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `privateplot_http_requests_total{code="200",method="GET",route="GET /api/articles"}`) {
		t.Fatalf("expected request counter, got %s", rec.Body.String())
	}

	plain := newFixture(t)
	if rec := plain.do(t, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected no metrics route when disabled, got %d", rec.Code)
	}
}

func TestCompression(t *testing.T) {
	f := newFixture(t, WithCompression(true))
	ctx := context.Background()
	for i := range 5 {
		if _, err := f.articles.Create(ctx, articles.CreateArticleRequest{
			Title:   "Compressible " + string(rune('A'+i)),
			Content: strings.Repeat("lorem ipsum dolor sit amet ", 80),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rec := f.do(t, http.MethodGet, "/api/articles", "", map[string]string{"Accept-Encoding": "gzip"})
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, headers %+v", rec.Header())
	}
	reader, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	var listing publicListing
	if err := json.Unmarshal(data, &listing); err != nil || listing.Total != 5 {
		t.Fatalf("unexpected decompressed body: %v %+v", err, listing)
	}
}

func TestMissingServicesAnswerUnavailable(t *testing.T) {
	server, err := NewServer(WithInternalToken(testToken))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	handler, err := server.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
