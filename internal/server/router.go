package server

import "net/http"

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/catalog", s.handleGetCatalog)
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("GET /api/history/stats", s.handleGetHistoryStats)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/category", s.handleSelectCategory)
	mux.HandleFunc("POST /api/sessions/{id}/scenario", s.handleSelectScenario)
	mux.HandleFunc("POST /api/sessions/{id}/events", s.handleSessionEvent)
	mux.HandleFunc("POST /api/sessions/{id}/answer", s.handleSubmitAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/chat", s.handleChat)
	mux.HandleFunc("GET /api/sessions/{id}/audio", s.handleAudio)

	return s.requestLogger(mux)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
