package gateway

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
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Status (no auth required)
	r.Get("/status", s.handleStatus)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.apiKeyMiddleware)

		r.Route("/inbox", func(r chi.Router) {
			r.Get("/", s.handleListInbox)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMessage)
				r.Post("/read", s.handleMarkRead)
				r.Delete("/", s.handleDeleteMessage)
			})
		})

		r.Post("/send", s.handleSend)
	})

	return r
}

// buildEventRouter creates the router for the event channel listener.
// The channel is upgrade-only: any GET is a subscription attempt.
func (s *Server) buildEventRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)

	r.Get("/", s.handleWebSocket)
	r.Get("/events", s.handleWebSocket)

	return r
}
