package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(s.requestIDHeaderMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in
			// to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Lock operations
			r.Get("/status", s.handleStatus)
			r.Post("/triggers", s.handleTrigger)
			r.Post("/tick", s.handleTick)

			// Event history
			r.Route("/history", func(r chi.Router) {
				r.Get("/", s.handleListHistory)
				r.Get("/stats", s.handleHistoryStats)
				r.Get("/export", s.handleExportHistory)
			})

			// User registry (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Post("/", s.requireAdmin(s.handleAddUser))
				r.Delete("/{id}", s.requireAdmin(s.handleRemoveUser))
			})

			// Security reset (admin only)
			r.Post("/security/reset", s.requireAdmin(s.handleSecurityReset))

			// Emergency operations
			r.Route("/emergency", func(r chi.Router) {
				r.Post("/", s.handleEmergency)
				r.Post("/override", s.handleEmergencyOverride)
				r.Get("/health", s.handleEmergencyHealth)
				r.Get("/log", s.handleEmergencyLog)
			})

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
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
