// Package handlers provides HTTP handlers for the country directory.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// DirectoryService resolves and lists countries.
type DirectoryService interface {
	Resolve(ctx context.Context, name string) (domain.CountryRecord, error)
	List(ctx context.Context) ([]domain.CountryRecord, error)
}

// Handler handles country directory HTTP requests
type Handler struct {
	service DirectoryService
	log     zerolog.Logger
}

// NewHandler creates a new directory handler
func NewHandler(service DirectoryService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "directory").Logger(),
	}
}

// HandleList handles GET /api/countries
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to list countries")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": records,
		"metadata": map[string]interface{}{
			"count":     len(records),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGet handles GET /api/countries/{name}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.Error(w, "Country name is required", http.StatusBadRequest)
		return
	}

	record, err := h.service.Resolve(r.Context(), name)
	if err != nil {
		h.writeError(w, err, "Failed to resolve country")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": record,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError maps engine failures onto HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnknownCountry):
		http.Error(w, "Country not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrDataUnavailable):
		http.Error(w, "Country data temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
