package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// maxOwnerLen bounds the owner identity; anything longer is rejected as
// invalid rather than truncated.
const maxOwnerLen = 128

// Resolver resolves country names to canonical records. Implemented by
// the directory service.
type Resolver interface {
	Resolve(ctx context.Context, name string) (domain.CountryRecord, error)
}

// SeriesFetcher fetches recent indicator series. Implemented by the
// indicators service.
type SeriesFetcher interface {
	FetchYears(ctx context.Context, country, indicator string, yearCount int) (domain.IndicatorSeries, error)
}

// Service orchestrates two-country comparisons and owns the saved
// comparison store.
type Service struct {
	resolver Resolver
	series   SeriesFetcher
	repo     *Repository // optional; nil disables saving
	log      zerolog.Logger
}

// NewService creates a comparison service.
func NewService(resolver Resolver, series SeriesFetcher, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		series:   series,
		repo:     repo,
		log:      log.With().Str("service", "comparison").Logger(),
	}
}

// Compare resolves both countries concurrently and builds the metric
// table. A resolution failure for either country aborts the whole
// comparison; there is no partial result with one side missing.
func (s *Service) Compare(ctx context.Context, name1, name2 string) (domain.ComparisonResult, error) {
	var r1, r2 domain.CountryRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r1, err = s.resolver.Resolve(gctx, name1)
		return err
	})
	g.Go(func() error {
		var err error
		r2, err = s.resolver.Resolve(gctx, name2)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ComparisonResult{}, err
	}

	return Compare(r1, r2), nil
}

// MergedView is a merged series plus a per-side trend summary. A nil
// trend means that side had fewer than two data points.
type MergedView struct {
	domain.MergedSeries
	Trend1 *Trend `json:"trend1"`
	Trend2 *Trend `json:"trend2"`
}

// MergedSeries fetches the indicator for both countries over the recent
// yearCount years, aligns the series on a shared year axis, and attaches
// trend summaries. Both names must resolve; both fetches must succeed.
func (s *Service) MergedSeries(ctx context.Context, name1, name2, indicator string, yearCount int) (MergedView, error) {
	var series1, series2 domain.IndicatorSeries

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series1, err = s.series.FetchYears(gctx, name1, indicator, yearCount)
		return err
	})
	g.Go(func() error {
		var err error
		series2, err = s.series.FetchYears(gctx, name2, indicator, yearCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return MergedView{}, err
	}

	return MergedView{
		MergedSeries: Merge(series1, series2),
		Trend1:       TrendOf(series1),
		Trend2:       TrendOf(series2),
	}, nil
}

// Save persists a comparison snapshot for the owner and returns the new
// record id. Append-only: saving the same pair again creates a new,
// independent record.
func (s *Service) Save(ctx context.Context, owner string, result domain.ComparisonResult) (string, error) {
	owner, err := ValidateOwner(owner)
	if err != nil {
		return "", err
	}
	if s.repo == nil {
		return "", fmt.Errorf("comparison store is not configured")
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal comparison result: %w", err)
	}

	id, err := s.repo.Insert(record{
		owner:     owner,
		country1:  result.Country1.Name,
		country2:  result.Country2.Name,
		payload:   payload,
		createdAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("owner", owner).Str("country1", result.Country1.Name).Str("country2", result.Country2.Name).Str("id", id).Msg("Saved comparison")
	return id, nil
}

// ListSaved returns the owner's saved comparisons, newest first.
func (s *Service) ListSaved(ctx context.Context, owner string) ([]domain.SavedComparison, error) {
	owner, err := ValidateOwner(owner)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return nil, fmt.Errorf("comparison store is not configured")
	}

	records, err := s.repo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}

	saved := make([]domain.SavedComparison, 0, len(records))
	for _, rec := range records {
		sc := domain.SavedComparison{
			ID:        rec.id,
			Owner:     rec.owner,
			Country1:  rec.country1,
			Country2:  rec.country2,
			CreatedAt: rec.createdAt,
		}
		if err := json.Unmarshal(rec.payload, &sc.Result); err != nil {
			// A corrupt payload should not hide the rest of the log.
			s.log.Error().Err(err).Str("id", rec.id).Msg("Skipping saved comparison with unreadable payload")
			continue
		}
		saved = append(saved, sc)
	}

	return saved, nil
}

// ValidateOwner rejects absent or implausible owner identities. Access
// to the store is authentication-gated; the identity itself comes from
// the transport layer, which checks it before doing any provider work.
func ValidateOwner(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" || len(owner) > maxOwnerLen {
		return "", fmt.Errorf("invalid owner identity: %w", domain.ErrUnauthorized)
	}
	return owner, nil
}
