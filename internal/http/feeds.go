package http

import "net/http"

func (s *Server) registerFeedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /rss.xml", s.handleRSS)
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	if s.feeds == nil {
		serviceUnavailable(w)
		return
	}
	data, err := s.feeds.RSS(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeXML(w, data)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if s.feeds == nil {
		serviceUnavailable(w)
		return
	}
	data, err := s.feeds.Sitemap(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeXML(w, data)
}

func writeXML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
