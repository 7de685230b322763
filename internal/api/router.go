package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/brewstock/internal/dashboard"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *dashboard.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/dashboard", h.Dashboard)
	r.Get("/tables/{kind}", h.Table)
	r.Post("/refresh", h.Refresh)
	r.Get("/batches/{id}", h.Batch)

	r.Get("/credentials", h.GetCredentials)
	r.Put("/credentials", h.PutCredentials)

	r.Get("/export.xlsx", h.Export)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
