package http

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
)

const (
	internalPrefix = "/api/internal/"
	apiPrefix      = "/api/"
	tokenHeader    = "X-Internal-Auth-Token"

	corsAllowMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Requested-With, X-Internal-Auth-Token"
)

// internalAuth guards every /api/internal/ path, matched or not.
func (s *Server) internalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, internalPrefix) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if s.token == "" {
			s.logger.Error("http.internal_auth.unconfigured")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgMisconfig})
			return
		}
		provided := r.Header.Get(tokenHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(s.token)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cors adds CORS headers to /api responses for allowed origins and answers
// their preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !strings.HasPrefix(r.URL.Path, apiPrefix) || origin == "" || !s.originAllowed(origin) {
			next.ServeHTTP(w, r)
			return
		}
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.allowOrigins, "*") || slices.Contains(s.allowOrigins, origin)
}

func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// observe logs each request and feeds the request metrics.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.logger.Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
		if s.metrics != nil {
			s.metrics.observe(r.Method, route, status, elapsed)
		}
	})
}
