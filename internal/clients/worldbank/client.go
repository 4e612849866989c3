// Package worldbank provides the adapter for the World Bank v2 indicator
// API, the statistical time-series provider.
//
// Indicator codes are opaque strings from the provider's taxonomy
// (e.g. NY.GDP.MKTP.CD); the engine never interprets them. The adapter
// normalizes the upstream [metadata, points] array shape into
// domain.IndicatorSeries and never retries.
package worldbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// DefaultBaseURL is the public World Bank API endpoint.
const DefaultBaseURL = "https://api.worldbank.org/v2"

// Client fetches indicator time series from the World Bank API.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a World Bank client with a bounded per-call timeout.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "worldbank").Logger(),
	}
}

// pointPayload mirrors one observation in the World Bank response. Value
// is null upstream when no data exists for that year.
type pointPayload struct {
	Date    string   `json:"date"`
	Value   *float64 `json:"value"`
	Country struct {
		Value string `json:"value"`
	} `json:"country"`
}

// errorPayload is the shape the API uses to report bad requests inside a
// 200 response.
type errorPayload struct {
	Message []struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"message"`
}

// GetSeries fetches the yearly series for (country, indicator) over the
// inclusive year range. Points come back sorted by ascending year with no
// duplicates; a year the provider reports as null keeps an explicit nil
// value.
func (c *Client) GetSeries(ctx context.Context, country, indicator string, years domain.YearRange) (domain.IndicatorSeries, error) {
	if !years.Valid() {
		return domain.IndicatorSeries{}, fmt.Errorf("invalid year range %d-%d", years.Start, years.End)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("date", fmt.Sprintf("%d:%d", years.Start, years.End))
	q.Set("per_page", strconv.Itoa(years.End-years.Start+1+10))

	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		c.baseURL, url.PathEscape(country), url.PathEscape(indicator), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.IndicatorSeries{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.IndicatorSeries{}, err
		}
		return domain.IndicatorSeries{}, fmt.Errorf("request failed: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.IndicatorSeries{}, domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.IndicatorSeries{}, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	// The API wraps everything in a top-level array: [metadata, points] on
	// success, [{"message": [...]}] on errors like unknown country codes.
	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.IndicatorSeries{}, fmt.Errorf("failed to decode response: %w", domain.ErrProviderMalformed)
	}

	if len(raw) < 2 {
		var errPayload errorPayload
		if len(raw) == 1 && json.Unmarshal(raw[0], &errPayload) == nil && len(errPayload.Message) > 0 {
			c.log.Debug().
				Str("country", country).
				Str("indicator", indicator).
				Str("message", errPayload.Message[0].Value).
				Msg("Provider reported no match")
			return domain.IndicatorSeries{}, domain.ErrNotFound
		}
		return domain.IndicatorSeries{}, fmt.Errorf("unexpected response shape: %w", domain.ErrProviderMalformed)
	}

	var points []pointPayload
	if err := json.Unmarshal(raw[1], &points); err != nil {
		return domain.IndicatorSeries{}, fmt.Errorf("failed to decode points: %w", domain.ErrProviderMalformed)
	}

	series := domain.IndicatorSeries{
		Country:   country,
		Indicator: indicator,
	}

	// The API returns points in descending year order; normalize to
	// ascending and drop duplicate years (first occurrence wins).
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		year, err := strconv.Atoi(p.Date)
		if err != nil {
			// Quarterly or monthly granularity would show up here; the
			// engine only deals in years.
			continue
		}
		if seen[year] {
			continue
		}
		seen[year] = true
		series.Points = append(series.Points, domain.SeriesPoint{Year: year, Value: p.Value})
	}

	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Year < series.Points[j].Year
	})

	return series, nil
}
