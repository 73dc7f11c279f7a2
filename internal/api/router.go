package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/dssafford/daylog/internal/entryservice"
)

// NewRouter creates a chi router with the entry API mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *entryservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/entries", h.CreateEntry)
	r.Get("/sections", h.ListSections)

	return r
}
