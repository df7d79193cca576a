package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Launcher lifecycle callbacks.
	r.Route("/features/{code}", func(r chi.Router) {
		r.Post("/enter", h.Enter)
		r.Post("/search", h.Search)
		r.Post("/select", h.Select)
	})

	// Connection settings.
	r.Get("/settings", h.ListSettings)
	r.Put("/settings/{key}", h.PutSetting)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
