package feeds_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/adapters/memory"
	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/feeds"
)

type stubSource struct {
	articles []*articles.Article
	calls    int
	err      error
}

func (s *stubSource) List(context.Context) ([]*articles.Article, error) {
	s.calls++
	return s.articles, s.err
}

var site = feeds.Site{
	Title:       "Plot & Co",
	Description: "Notes from a private plot",
	URL:         "https://blog.example.com/",
}

func fixtureArticles() []*articles.Article {
	created := time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC)
	return []*articles.Article{
		{
			ID:        uuid.New(),
			Title:     "Second <post>",
			Slug:      "second-post",
			Summary:   "Summary with & ampersand",
			CreatedAt: created.Add(24 * time.Hour),
			UpdatedAt: created.Add(48 * time.Hour),
		},
		{
			ID:        uuid.New(),
			Title:     "First post",
			Slug:      "first-post",
			Summary:   "The first one",
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func newFeedService(t *testing.T, source feeds.ArticleSource) *feeds.Service {
	t.Helper()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	svc, err := feeds.NewService(source, site,
		feeds.WithNow(func() time.Time { return now }),
		feeds.WithCache(memory.NewCache(), time.Hour),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRSSDocument(t *testing.T) {
	source := &stubSource{articles: fixtureArticles()}
	svc := newFeedService(t, source)

	data, err := svc.RSS(context.Background())
	if err != nil {
		t.Fatalf("rss: %v", err)
	}
	if err := feeds.ValidateXML(data, "rss"); err != nil {
		t.Fatalf("expected valid rss: %v", err)
	}
	doc := string(data)
	for _, want := range []string{
		`<rss version="2.0">`,
		"<title>Plot &amp; Co</title>",
		"<description>Notes from a private plot</description>",
		"<title>Second &lt;post&gt;</title>",
		"/article/second-post/</link>",
		`<guid isPermaLink="true">`,
		"<description>Summary with &amp; ampersand</description>",
		"<pubDate>Sun, 11 Feb 2024 09:30:00 +0000</pubDate>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected rss to contain %q\n%s", want, doc)
		}
	}
	if strings.Index(doc, "second-post") > strings.Index(doc, "first-post") {
		t.Fatalf("expected newest article first")
	}
}

func TestSitemapDocument(t *testing.T) {
	svc := newFeedService(t, &stubSource{articles: fixtureArticles()})

	data, err := svc.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if err := feeds.ValidateXML(data, "urlset"); err != nil {
		t.Fatalf("expected valid sitemap: %v", err)
	}
	doc := string(data)
	if !strings.HasPrefix(doc, "<?xml") {
		t.Fatalf("expected xml declaration, got %q", doc[:20])
	}
	for _, want := range []string{
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<lastmod>2024-03-01T00:00:00Z</lastmod>",
		"<changefreq>daily</changefreq>",
		"<priority>1.0</priority>",
		"/article/second-post/</loc>",
		"<lastmod>2024-02-12T09:30:00Z</lastmod>",
		"<lastmod>2024-02-10T09:30:00Z</lastmod>",
		"<changefreq>weekly</changefreq>",
		"<priority>0.6</priority>",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected sitemap to contain %q\n%s", want, doc)
		}
	}
	if got := strings.Count(doc, "<url>"); got != 3 {
		t.Fatalf("expected 3 url entries, got %d", got)
	}
}

func TestDocumentsAreCachedUntilArticlesChange(t *testing.T) {
	source := &stubSource{articles: fixtureArticles()}
	svc := newFeedService(t, source)
	ctx := context.Background()

	if _, err := svc.RSS(ctx); err != nil {
		t.Fatalf("rss: %v", err)
	}
	if _, err := svc.RSS(ctx); err != nil {
		t.Fatalf("rss: %v", err)
	}
	if _, err := svc.Sitemap(ctx); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected one listing per document, got %d", source.calls)
	}

	svc.ArticleChanged(ctx, articles.Event{Type: articles.EventCreated, Slug: "third"})

	if _, err := svc.RSS(ctx); err != nil {
		t.Fatalf("rss: %v", err)
	}
	if _, err := svc.Sitemap(ctx); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if source.calls != 4 {
		t.Fatalf("expected both documents rebuilt after change, got %d listings", source.calls)
	}
}

func TestInvalidCachedDocumentIsRegenerated(t *testing.T) {
	source := &stubSource{articles: fixtureArticles()}
	cache := memory.NewCache()
	svc, err := feeds.NewService(source, site, feeds.WithCache(cache, time.Hour))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	_ = cache.Set(ctx, feeds.KeyRSS, []byte("<rss><channel></rss>"), time.Hour)

	data, err := svc.RSS(ctx)
	if err != nil {
		t.Fatalf("rss: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected regeneration, got %d listings", source.calls)
	}
	if err := feeds.ValidateXML(data, "rss"); err != nil {
		t.Fatalf("expected regenerated rss to be valid: %v", err)
	}
	stored, _ := cache.Get(ctx, feeds.KeyRSS)
	if string(stored.([]byte)) != string(data) {
		t.Fatalf("expected regenerated document to replace the cached one")
	}
}

func TestSourceErrorIsReturned(t *testing.T) {
	boom := errors.New("db down")
	svc := newFeedService(t, &stubSource{err: boom})

	if _, err := svc.RSS(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestNewServiceRejectsBadSiteURL(t *testing.T) {
	if _, err := feeds.NewService(&stubSource{}, feeds.Site{URL: "not a url"}); err == nil {
		t.Fatalf("expected invalid site url error")
	}
}

func TestStaticPages(t *testing.T) {
	svc, err := feeds.NewService(&stubSource{}, site, feeds.WithStaticPages(
		feeds.StaticPage{Path: "/", Priority: 1.0, ChangeFreq: feeds.ChangeDaily},
		feeds.StaticPage{Path: "/links", Priority: 0.5, ChangeFreq: feeds.ChangeWeekly},
	))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	data, err := svc.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if !strings.Contains(string(data), "<loc>https://blog.example.com/links</loc>") {
		t.Fatalf("expected static page entry\n%s", data)
	}
}
