package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all country directory routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/countries", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{name}", h.HandleGet)
	})
}
