package feeds

import (
	"fmt"
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	siteGroup    = "site"
	routeHome    = "home"
	routeArticle = "article"
)

// Links builds absolute URLs for the public site.
type Links struct {
	manager *urlkit.RouteManager
	base    *url.URL
}

// NewLinks parses siteURL and registers the public routes with go-urlkit.
func NewLinks(siteURL string) (*Links, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	base, err := url.Parse(trimmed)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("feeds: invalid site url %q", siteURL)
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    siteGroup,
				BaseURL: trimmed,
				Paths: map[string]string{
					routeHome:    "/",
					routeArticle: "/article/:slug/",
				},
			},
		},
	})
	return &Links{manager: manager, base: base}, nil
}

// Home is the site root.
func (l *Links) Home() string {
	home, err := l.manager.Group(siteGroup).Builder(routeHome).Build()
	if err != nil || home == "" {
		return l.Page("/")
	}
	return home
}

// Article is the public page of the article with the given slug.
func (l *Links) Article(slug string) (string, error) {
	link, err := l.manager.Group(siteGroup).Builder(routeArticle).WithParam("slug", slug).Build()
	if err != nil {
		return "", fmt.Errorf("feeds: build article url: %w", err)
	}
	if !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link, nil
}

// Page resolves a site relative path against the site URL.
func (l *Links) Page(path string) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	base := *l.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String()
}
