// Package indicators resolves (country, indicator, year-range) tuples to
// time series through the cache layer.
//
// Series are cached with a shorter TTL than directory facts because
// providers revise indicator values. Disjoint year ranges for the same
// (country, indicator) pair cache independently by range key: a narrower
// cached range does not satisfy a wider request and triggers a fresh
// fetch. Cache entries are never merged across ranges.
package indicators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Hamza-spc/CountryCompare/internal/cache"
	"github.com/Hamza-spc/CountryCompare/internal/clientdata"
	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// SeriesClient is the statistical time-series provider adapter.
type SeriesClient interface {
	GetSeries(ctx context.Context, country, indicator string, years domain.YearRange) (domain.IndicatorSeries, error)
}

// Service fetches indicator series with caching.
type Service struct {
	cache        *cache.Cache
	client       SeriesClient
	warm         *clientdata.Repository // optional; nil disables the stale fallback
	ttl          time.Duration
	latestWindow int // years scanned by Latest for the newest value
	log          zerolog.Logger
}

// NewService creates an indicator fetcher. latestWindow is how many recent
// years Latest scans; values below 1 fall back to 6.
func NewService(c *cache.Cache, client SeriesClient, warm *clientdata.Repository, ttl time.Duration, latestWindow int, log zerolog.Logger) *Service {
	if latestWindow < 1 {
		latestWindow = 6
	}
	return &Service{
		cache:        c,
		client:       client,
		warm:         warm,
		ttl:          ttl,
		latestWindow: latestWindow,
		log:          log.With().Str("service", "indicators").Logger(),
	}
}

func seriesKey(country, indicator string, years domain.YearRange) string {
	return fmt.Sprintf("series:%s:%s:%d-%d", strings.ToLower(country), indicator, years.Start, years.End)
}

// Fetch returns the series for (country, indicator) over the inclusive
// year range, from cache when fresh.
func (s *Service) Fetch(ctx context.Context, country, indicator string, years domain.YearRange) (domain.IndicatorSeries, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return domain.IndicatorSeries{}, fmt.Errorf("empty country: %w", domain.ErrUnknownCountry)
	}
	// A provider "no match" reply for a code outside the catalog would be
	// indistinguishable from an unknown country, so reject it here.
	if !IsSupported(indicator) {
		return domain.IndicatorSeries{}, fmt.Errorf("unsupported indicator code %q", indicator)
	}
	if !years.Valid() {
		return domain.IndicatorSeries{}, fmt.Errorf("invalid year range %d-%d", years.Start, years.End)
	}

	key := seriesKey(country, indicator, years)

	series, err := cache.GetOrFetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) (domain.IndicatorSeries, error) {
		series, err := s.client.GetSeries(ctx, country, indicator, years)
		if err != nil {
			return domain.IndicatorSeries{}, err
		}

		if s.warm != nil {
			if err := s.warm.Store(clientdata.TableIndicatorSeries, key, series, clientdata.TTLWarmSeries); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("Failed to write warm cache")
			}
		}

		return series, nil
	})
	if err != nil {
		return s.recover(key, country, indicator, err)
	}

	return series, nil
}

// FetchYears is the year-count form of Fetch used by the API layer:
// the most recent yearCount years ending at the current year.
func (s *Service) FetchYears(ctx context.Context, country, indicator string, yearCount int) (domain.IndicatorSeries, error) {
	if yearCount < 1 {
		return domain.IndicatorSeries{}, fmt.Errorf("year count must be positive, got %d", yearCount)
	}
	end := time.Now().Year()
	return s.Fetch(ctx, country, indicator, domain.YearRange{Start: end - yearCount + 1, End: end})
}

func (s *Service) recover(key, country, indicator string, err error) (domain.IndicatorSeries, error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.IndicatorSeries{}, fmt.Errorf("country %q: %w", country, domain.ErrUnknownCountry)

	case errors.Is(err, domain.ErrProviderMalformed):
		s.log.Error().Err(err).Str("country", country).Str("indicator", indicator).Msg("Provider returned malformed series")
		fallthrough

	case errors.Is(err, domain.ErrProviderUnavailable):
		if series, ok := s.staleSeries(key); ok {
			s.log.Warn().Str("country", country).Str("indicator", indicator).Msg("Provider failed, serving stale warm-cache series")
			return series, nil
		}
		return domain.IndicatorSeries{}, fmt.Errorf("series %s for %q: %w", indicator, country, domain.ErrDataUnavailable)

	default:
		return domain.IndicatorSeries{}, err
	}
}

func (s *Service) staleSeries(key string) (domain.IndicatorSeries, bool) {
	if s.warm == nil {
		return domain.IndicatorSeries{}, false
	}

	raw, err := s.warm.Get(clientdata.TableIndicatorSeries, key)
	if err != nil || raw == nil {
		return domain.IndicatorSeries{}, false
	}

	var series domain.IndicatorSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return domain.IndicatorSeries{}, false
	}
	return series, true
}

// Latest returns the most recent non-absent value for (country,
// indicator) within the service's scan window, along with its year.
// Returns nil when no value exists in the window.
func (s *Service) Latest(ctx context.Context, country, indicator string) (*float64, int, error) {
	end := time.Now().Year()
	series, err := s.Fetch(ctx, country, indicator, domain.YearRange{Start: end - s.latestWindow + 1, End: end})
	if err != nil {
		return nil, 0, err
	}

	for i := len(series.Points) - 1; i >= 0; i-- {
		if series.Points[i].Value != nil {
			return series.Points[i].Value, series.Points[i].Year, nil
		}
	}
	return nil, 0, nil
}

// Bundle assembles the indicator bundle for a country from the latest
// value of each catalog code. Individual failures leave the corresponding
// field absent; the bundle itself never fails.
func (s *Service) Bundle(ctx context.Context, country string) domain.IndicatorBundle {
	var bundle domain.IndicatorBundle

	targets := []struct {
		code string
		dst  **float64
	}{
		{CodeGDP, &bundle.GDP},
		{CodeGDPPerCapita, &bundle.GDPPerCapita},
		{CodeHumanCapital, &bundle.HDI},
		{CodeLifeExpectancy, &bundle.LifeExpectancy},
		{CodeInternetUsers, &bundle.InternetPenetration},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			value, _, err := s.Latest(ctx, country, t.code)
			if err != nil {
				s.log.Debug().Err(err).Str("country", country).Str("indicator", t.code).Msg("Bundle enrichment skipped indicator")
				return nil // enrichment is best-effort
			}
			*t.dst = value
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return bundle
}
