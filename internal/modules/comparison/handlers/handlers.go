// Package handlers provides HTTP handlers for two-country comparisons
// and the saved comparison store.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
	"github.com/Hamza-spc/CountryCompare/internal/modules/comparison"
)

// ownerHeader carries the requester identity. Authentication itself is
// handled upstream; an empty header fails as unauthorized.
const ownerHeader = "X-Owner-ID"

// ComparisonService orchestrates comparisons and owns the saved store.
type ComparisonService interface {
	Compare(ctx context.Context, name1, name2 string) (domain.ComparisonResult, error)
	Save(ctx context.Context, owner string, result domain.ComparisonResult) (string, error)
	ListSaved(ctx context.Context, owner string) ([]domain.SavedComparison, error)
}

// Handler handles comparison HTTP requests
type Handler struct {
	service ComparisonService
	log     zerolog.Logger
}

// NewHandler creates a new comparison handler
func NewHandler(service ComparisonService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "comparison").Logger(),
	}
}

// HandleCompare handles GET /api/compare?c1=&c2=
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	c1 := r.URL.Query().Get("c1")
	c2 := r.URL.Query().Get("c2")
	if c1 == "" || c2 == "" {
		http.Error(w, "Query parameters c1 and c2 are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Compare(r.Context(), c1, c2)
	if err != nil {
		h.writeError(w, err, "Failed to compare countries")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// SaveRequest names the pair to compare and persist.
type SaveRequest struct {
	Country1 string `json:"country1"`
	Country2 string `json:"country2"`
}

// HandleSave handles POST /api/comparisons. The comparison is computed
// fresh and stored as an immutable snapshot for the requesting owner.
// The owner identity is checked first so an unauthenticated request never
// triggers provider fetches.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	owner, err := comparison.ValidateOwner(r.Header.Get(ownerHeader))
	if err != nil {
		h.writeError(w, err, "Failed to save comparison")
		return
	}

	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Country1 == "" || req.Country2 == "" {
		http.Error(w, "Fields country1 and country2 are required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Compare(r.Context(), req.Country1, req.Country2)
	if err != nil {
		h.writeError(w, err, "Failed to compare countries")
		return
	}

	id, err := h.service.Save(r.Context(), owner, result)
	if err != nil {
		h.writeError(w, err, "Failed to save comparison")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"id":     id,
			"result": result,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleListSaved handles GET /api/comparisons
func (h *Handler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	owner := r.Header.Get(ownerHeader)

	saved, err := h.service.ListSaved(r.Context(), owner)
	if err != nil {
		h.writeError(w, err, "Failed to list saved comparisons")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": saved,
		"metadata": map[string]interface{}{
			"count":     len(saved),
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
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, "Missing or invalid owner identity", http.StatusUnauthorized)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
