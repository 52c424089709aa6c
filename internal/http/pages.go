package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/friendlinks"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		"iso":  func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}).ParseFS(templateFS, "templates/*.html")
}

type pageData struct {
	Site        Site
	Title       string
	Article     *articles.Article
	Body        template.HTML
	Articles    []*articles.Article
	HasMore     bool
	FriendLinks []*friendlinks.FriendLink
}

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndexPage)
	mux.HandleFunc("GET /article/{slug}/{$}", s.handleArticlePage)
}

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	page, err := s.articles.Page(r.Context(), 1, s.pageSize)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	data := pageData{
		Site:     s.site,
		Title:    s.site.Title,
		Articles: page.Articles,
		HasMore:  page.HasMore,
	}
	if s.friendLinks != nil {
		links, err := s.friendLinks.ListActive(r.Context())
		if err != nil {
			s.logger.Warn("http.index.friend_links_failed", "error", err)
		}
		data.FriendLinks = links
	}
	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) handleArticlePage(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	article, err := s.articles.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, http.StatusOK, "article.html", pageData{
		Site:    s.site,
		Title:   article.Title,
		Article: article,
		// Rendered is produced by the server-side markdown renderer.
		Body: template.HTML(article.Rendered),
	})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *articles.NotFoundError
	if errors.As(err, &notFound) {
		s.render(w, http.StatusNotFound, "notfound.html", pageData{Site: s.site, Title: "Not found"})
		return
	}
	s.logger.Error("http.page.failed", "path", r.URL.Path, "error", err)
	http.Error(w, msgInternal, http.StatusInternalServerError)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("http.template.failed", "template", name, "error", err)
	}
}
