package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all indicator routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/indicators", func(r chi.Router) {
		r.Get("/", h.HandleCatalog)
		r.Get("/{code}/series", h.HandleSeries)
		r.Get("/{code}/merged", h.HandleMerged)
	})
}
