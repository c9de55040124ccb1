package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Resource endpoints
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", s.handleListResources)

			r.Route("/{resource}", func(r chi.Router) {
				r.Get("/", s.handleGetResource)
				r.Get("/state", s.handleResourceState)
				r.Get("/state/{property}", s.handleResourcePropertyState)
				r.Post("/query", s.handleResourceQuery)
				r.Get("/history", s.handleResourceHistory)
			})
		})

		// Session endpoints
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleOpenSession)

			r.Route("/{handle}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCloseSession)
				r.Post("/query", s.handleSessionQuery)
				r.Get("/history", s.handleSessionHistory)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
