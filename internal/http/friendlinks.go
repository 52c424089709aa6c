package http

import (
	"net/http"

	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/internal/validation"
)

func (s *Server) registerFriendLinkRoutes(mux *http.ServeMux) {
	root := "/api/internal/friend-links"
	mux.HandleFunc("GET "+root, s.handleFriendLinkList)
	mux.HandleFunc("POST "+root, s.handleFriendLinkCreate)
	mux.HandleFunc("GET "+root+"/{id}", s.handleFriendLinkGet)
	mux.HandleFunc("PUT "+root+"/{id}", s.handleFriendLinkUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", s.handleFriendLinkDelete)

	mux.HandleFunc("GET /api/friend-links", s.handleFriendLinkActive)
}

func (s *Server) handleFriendLinkList(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	list, err := s.friendLinks.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleFriendLinkActive(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	list, err := s.friendLinks.ListActive(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleFriendLinkGet(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	id, err := parseID(r.PathValue("id"), "friend link")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := s.friendLinks.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) handleFriendLinkCreate(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	var payload friendlinks.CreateInput
	raw, err := readJSON(r, &payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.Validate(validation.SchemaFriendLinkInput, raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := s.friendLinks.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleFriendLinkUpdate(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	id, err := parseID(r.PathValue("id"), "friend link")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var payload friendlinks.UpdateInput
	raw, err := readJSON(r, &payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validation.ValidatePartial(validation.SchemaFriendLinkInput, raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	link, err := s.friendLinks.Update(r.Context(), id, payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (s *Server) handleFriendLinkDelete(w http.ResponseWriter, r *http.Request) {
	if s.friendLinks == nil {
		serviceUnavailable(w)
		return
	}
	id, err := parseID(r.PathValue("id"), "friend link")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.friendLinks.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(list []*friendlinks.FriendLink) []*friendlinks.FriendLink {
	if list == nil {
		return []*friendlinks.FriendLink{}
	}
	return list
}
