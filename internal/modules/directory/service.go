// Package directory resolves country names to canonical records.
//
// The directory sits behind the cache layer with a long TTL: directory
// facts are near-static, so a stale capital or population figure for a few
// hours is acceptable. The directory never retries; a failure is returned
// to the caller, which may retry the whole comparison request.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/cache"
	"github.com/Hamza-spc/CountryCompare/internal/clientdata"
	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

const allCountriesKey = "countries:all"

// CountryClient is the country-facts provider adapter.
type CountryClient interface {
	GetCountry(ctx context.Context, name string) (domain.CountryRecord, error)
	ListCountries(ctx context.Context) ([]domain.CountryRecord, error)
}

// BundleSource supplies the latest indicator values for record enrichment.
// Implemented by the indicators service.
type BundleSource interface {
	Bundle(ctx context.Context, country string) domain.IndicatorBundle
}

// Service resolves and lists countries.
type Service struct {
	cache   *cache.Cache
	client  CountryClient
	bundles BundleSource           // optional; nil disables enrichment
	warm    *clientdata.Repository // optional; nil disables the stale fallback
	ttl     time.Duration
	log     zerolog.Logger
}

// NewService creates a country directory.
func NewService(c *cache.Cache, client CountryClient, bundles BundleSource, warm *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		cache:   c,
		client:  client,
		bundles: bundles,
		warm:    warm,
		ttl:     ttl,
		log:     log.With().Str("service", "directory").Logger(),
	}
}

// Resolve returns the canonical record for a country name.
//
// Failure mapping: provider not-found becomes ErrUnknownCountry (terminal,
// never retried); provider unavailable or malformed becomes
// ErrDataUnavailable after the warm cache has been consulted.
func (s *Service) Resolve(ctx context.Context, name string) (domain.CountryRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CountryRecord{}, fmt.Errorf("empty country name: %w", domain.ErrUnknownCountry)
	}

	key := "country:" + strings.ToLower(name)

	rec, err := cache.GetOrFetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) (domain.CountryRecord, error) {
		rec, err := s.client.GetCountry(ctx, name)
		if err != nil {
			return domain.CountryRecord{}, err
		}

		// Enrichment failures leave indicator fields absent; they never
		// fail the resolve. The bundle is part of the cached record, so it
		// refreshes wholesale with the record on expiry.
		if s.bundles != nil {
			rec.Indicators = s.bundles.Bundle(ctx, rec.Name)
		}

		if s.warm != nil {
			if err := s.warm.Store(clientdata.TableCountryRecords, key, rec, clientdata.TTLWarmCountry); err != nil {
				s.log.Warn().Err(err).Str("country", rec.Name).Msg("Failed to write warm cache")
			}
		}

		return rec, nil
	})
	if err != nil {
		return s.recoverResolve(key, name, err)
	}

	return rec, nil
}

// recoverResolve maps provider failures onto the engine taxonomy, falling
// back to a stale warm-cache copy for transient failures.
func (s *Service) recoverResolve(key, name string, err error) (domain.CountryRecord, error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.CountryRecord{}, fmt.Errorf("country %q: %w", name, domain.ErrUnknownCountry)

	case errors.Is(err, domain.ErrProviderMalformed):
		// The malformed/unavailable distinction is operational, not
		// user-facing; log it here and degrade to unavailable.
		s.log.Error().Err(err).Str("country", name).Msg("Provider returned malformed country data")
		fallthrough

	case errors.Is(err, domain.ErrProviderUnavailable):
		if rec, ok := s.staleRecord(key); ok {
			s.log.Warn().Str("country", name).Msg("Provider failed, serving stale warm-cache record")
			return rec, nil
		}
		return domain.CountryRecord{}, fmt.Errorf("country %q: %w", name, domain.ErrDataUnavailable)

	default:
		return domain.CountryRecord{}, err
	}
}

func (s *Service) staleRecord(key string) (domain.CountryRecord, bool) {
	if s.warm == nil {
		return domain.CountryRecord{}, false
	}

	raw, err := s.warm.Get(clientdata.TableCountryRecords, key)
	if err != nil || raw == nil {
		return domain.CountryRecord{}, false
	}

	var rec domain.CountryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CountryRecord{}, false
	}
	return rec, true
}

// List returns the full directory sorted by name. Records carry no
// indicator bundle: enriching a couple hundred countries in one request
// would fan out far too many provider calls.
func (s *Service) List(ctx context.Context) ([]domain.CountryRecord, error) {
	records, err := cache.GetOrFetch(ctx, s.cache, allCountriesKey, s.ttl, func(ctx context.Context) ([]domain.CountryRecord, error) {
		records, err := s.client.ListCountries(ctx)
		if err != nil {
			return nil, err
		}

		if s.warm != nil {
			if err := s.warm.Store(clientdata.TableCountryRecords, allCountriesKey, records, clientdata.TTLWarmCountry); err != nil {
				s.log.Warn().Err(err).Msg("Failed to write warm cache for directory list")
			}
		}

		return records, nil
	})
	if err != nil {
		return s.recoverList(err)
	}

	return records, nil
}

func (s *Service) recoverList(err error) ([]domain.CountryRecord, error) {
	if !errors.Is(err, domain.ErrProviderUnavailable) && !errors.Is(err, domain.ErrProviderMalformed) {
		return nil, err
	}

	if errors.Is(err, domain.ErrProviderMalformed) {
		s.log.Error().Err(err).Msg("Provider returned malformed directory list")
	}

	if s.warm != nil {
		if raw, warmErr := s.warm.Get(clientdata.TableCountryRecords, allCountriesKey); warmErr == nil && raw != nil {
			var records []domain.CountryRecord
			if json.Unmarshal(raw, &records) == nil {
				s.log.Warn().Msg("Provider failed, serving stale directory list")
				return records, nil
			}
		}
	}

	return nil, fmt.Errorf("country directory: %w", domain.ErrDataUnavailable)
}
