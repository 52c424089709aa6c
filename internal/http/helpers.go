package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/articles"
	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/internal/validation"
)

const maxBodyBytes = 4 << 20

const (
	msgValidation   = "Validation Error"
	msgInternal     = "Internal Server Error"
	msgNotFound     = "Not Found"
	msgLinkNotFound = "Friend link not found"
	msgConflict     = "Conflict"
	msgUnauthorized = "Unauthorized access to internal API"
	msgMisconfig    = "Internal server configuration error"
)

var errInvalidJSON = errors.New("request body must be a JSON object")

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// readJSON decodes the body into a generic payload for schema validation and
// into target for the handler.
func readJSON(r *http.Request, target any) (map[string]any, error) {
	if r == nil || r.Body == nil {
		return nil, errInvalidJSON
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	payload := map[string]any{}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return nil, errInvalidJSON
	}
	if target != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return nil, errInvalidJSON
		}
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: msgInternal}
	}

	if errors.Is(err, errInvalidJSON) {
		return http.StatusBadRequest, errorResponse{Error: msgValidation, Details: []string{err.Error()}}
	}

	var payloadErr *validation.PayloadValidationError
	if errors.As(err, &payloadErr) {
		return http.StatusBadRequest, errorResponse{Error: msgValidation, Details: payloadErr.Details()}
	}

	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{Error: msgValidation, Details: validationDetails(err)}
	}

	var linkNotFound *friendlinks.NotFoundError
	if errors.As(err, &linkNotFound) {
		return http.StatusNotFound, errorResponse{Error: msgLinkNotFound}
	}
	var articleNotFound *articles.NotFoundError
	if errors.As(err, &articleNotFound) {
		return http.StatusNotFound, errorResponse{Error: msgNotFound, Message: err.Error()}
	}

	if goerrors.IsCategory(err, goerrors.CategoryConflict) ||
		errors.Is(err, articles.ErrSlugExists) ||
		errors.Is(err, friendlinks.ErrURLExists) {
		return http.StatusConflict, errorResponse{Error: msgConflict, Message: messageOf(err)}
	}

	return http.StatusInternalServerError, errorResponse{Error: msgInternal}
}

func validationDetails(err error) []string {
	fields, ok := goerrors.GetValidationErrors(err)
	if !ok || len(fields) == 0 {
		return []string{messageOf(err)}
	}
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Field+": "+field.Message)
	}
	slices.Sort(out)
	return out
}

func messageOf(err error) string {
	var typed *goerrors.Error
	if errors.As(err, &typed) && typed.Message != "" {
		return typed.Message
	}
	return err.Error()
}

// parseID reads an id from the query or path. Malformed ids are reported as
// missing records.
func parseID(raw, resource string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)
	id, err := uuid.Parse(trimmed)
	if err != nil {
		if resource == "friend link" {
			return uuid.Nil, &friendlinks.NotFoundError{Key: trimmed}
		}
		return uuid.Nil, &articles.NotFoundError{Resource: resource, Key: trimmed}
	}
	return id, nil
}
