// Package http serves the blog over net/http.
//
// Routes:
//   - Internal API (X-Internal-Auth-Token): /api/internal/article, /api/internal/articles,
//     /api/internal/friend-links, /api/internal/friend-links/{id}
//   - Public API: /api/articles?page=, /api/friend-links
//   - Pages and feeds: /article/{slug}/, /rss.xml, /sitemap.xml
//   - Operations: /healthz, /metrics
package http
