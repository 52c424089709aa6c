package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/validation"
)

type articleCreatePayload struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Slug    string  `json:"slug,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

type articleUpdatePayload struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Summary *string `json:"summary,omitempty"`
}

type articleResponse struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Slug      string         `json:"slug"`
	Summary   string         `json:"summary"`
	Meta      map[string]any `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type internalListingItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type internalListing struct {
	Articles []internalListingItem `json:"articles"`
	Total    int                   `json:"total"`
}

type publicListingItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type publicListing struct {
	Articles []publicListingItem `json:"articles"`
	HasMore  bool                `json:"hasMore"`
	Total    int                 `json:"total"`
}

func (s *Server) registerArticleRoutes(mux *http.ServeMux) {
	mux.HandleFunc("PUT /api/internal/article", s.handleArticleCreate)
	mux.HandleFunc("PATCH /api/internal/article", s.handleArticleUpdate)
	mux.HandleFunc("DELETE /api/internal/article", s.handleArticleDelete)
	mux.HandleFunc("GET /api/internal/articles", s.handleInternalArticleList)
	mux.HandleFunc("GET /api/articles", s.handlePublicArticleList)
}

func (s *Server) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	var payload articleCreatePayload
	raw, err := readJSON(r, &payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.SchemaArticleInput, raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	record, err := s.articles.Create(r.Context(), articles.CreateArticleRequest{
		Title:   payload.Title,
		Content: payload.Content,
		Slug:    payload.Slug,
		Summary: payload.Summary,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newArticleResponse(record))
}

func (s *Server) handleArticleUpdate(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	id, err := parseID(r.URL.Query().Get("id"), "article")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload articleUpdatePayload
	raw, err := readJSON(r, &payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.ValidatePartial(validation.SchemaArticleInput, raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	record, err := s.articles.Update(r.Context(), id, articles.UpdateArticleRequest{
		Title:   payload.Title,
		Content: payload.Content,
		Summary: payload.Summary,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newArticleResponse(record))
}

func (s *Server) handleArticleDelete(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	id, err := parseID(r.URL.Query().Get("id"), "article")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.articles.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInternalArticleList(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	list, err := s.articles.ListMetadata(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := internalListing{
		Articles: make([]internalListingItem, 0, len(list)),
		Total:    len(list),
	}
	for _, meta := range list {
		out.Articles = append(out.Articles, internalListingItem{
			ID:        meta.ID,
			Title:     meta.Title,
			CreatedAt: meta.CreatedAt,
			UpdatedAt: meta.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePublicArticleList(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		serviceUnavailable(w)
		return
	}
	page, err := s.articles.Page(r.Context(), pageNumber(r.URL.Query().Get("page")), s.pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := publicListing{
		Articles: make([]publicListingItem, 0, len(page.Articles)),
		HasMore:  page.HasMore,
		Total:    page.Total,
	}
	for _, article := range page.Articles {
		out.Articles = append(out.Articles, publicListingItem{
			ID:        article.ID,
			Title:     article.Title,
			Summary:   article.Summary,
			Slug:      article.Slug,
			CreatedAt: article.CreatedAt,
			UpdatedAt: article.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// pageNumber parses the 1-based page query; anything unusable is page 1.
func pageNumber(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func newArticleResponse(a *articles.Article) articleResponse {
	return articleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Slug:      a.Slug,
		Summary:   a.Summary,
		Meta:      a.Meta,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
