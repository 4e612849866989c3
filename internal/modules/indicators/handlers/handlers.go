// Package handlers provides HTTP handlers for indicator series.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
	"github.com/Hamza-spc/CountryCompare/internal/modules/comparison"
	"github.com/Hamza-spc/CountryCompare/internal/modules/indicators"
)

const (
	defaultYearCount = 10
	maxYearCount     = 60
)

// SeriesService fetches indicator series by recent year count.
type SeriesService interface {
	FetchYears(ctx context.Context, country, indicator string, yearCount int) (domain.IndicatorSeries, error)
}

// MergeService aligns the same indicator for two countries.
type MergeService interface {
	MergedSeries(ctx context.Context, name1, name2, indicator string, yearCount int) (comparison.MergedView, error)
}

// Handler handles indicator HTTP requests
type Handler struct {
	series SeriesService
	merge  MergeService
	log    zerolog.Logger
}

// NewHandler creates a new indicators handler
func NewHandler(series SeriesService, merge MergeService, log zerolog.Logger) *Handler {
	return &Handler{
		series: series,
		merge:  merge,
		log:    log.With().Str("handler", "indicators").Logger(),
	}
}

// HandleCatalog handles GET /api/indicators
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": indicators.Supported,
		"metadata": map[string]interface{}{
			"count":     len(indicators.Supported),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleSeries handles GET /api/indicators/{code}/series?country=&years=N
func (h *Handler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !indicators.IsSupported(code) {
		http.Error(w, "Unsupported indicator code", http.StatusBadRequest)
		return
	}

	country := r.URL.Query().Get("country")
	if country == "" {
		http.Error(w, "Query parameter country is required", http.StatusBadRequest)
		return
	}

	years, ok := h.yearCount(w, r)
	if !ok {
		return
	}

	series, err := h.series.FetchYears(r.Context(), country, code, years)
	if err != nil {
		h.writeError(w, err, "Failed to fetch indicator series")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": series,
		"metadata": map[string]interface{}{
			"years":     years,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleMerged handles GET /api/indicators/{code}/merged?c1=&c2=&years=N
func (h *Handler) HandleMerged(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !indicators.IsSupported(code) {
		http.Error(w, "Unsupported indicator code", http.StatusBadRequest)
		return
	}

	c1 := r.URL.Query().Get("c1")
	c2 := r.URL.Query().Get("c2")
	if c1 == "" || c2 == "" {
		http.Error(w, "Query parameters c1 and c2 are required", http.StatusBadRequest)
		return
	}

	years, ok := h.yearCount(w, r)
	if !ok {
		return
	}

	view, err := h.merge.MergedSeries(r.Context(), c1, c2, code, years)
	if err != nil {
		h.writeError(w, err, "Failed to merge indicator series")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": view,
		"metadata": map[string]interface{}{
			"years":     years,
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// yearCount parses the optional years query parameter. Writes a 400 and
// returns false on invalid input.
func (h *Handler) yearCount(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("years")
	if raw == "" {
		return defaultYearCount, true
	}

	years, err := strconv.Atoi(raw)
	if err != nil || years < 1 || years > maxYearCount {
		http.Error(w, "Query parameter years must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return years, true
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
		http.Error(w, "Indicator data temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.log.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}
