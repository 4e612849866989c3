// Package domain contains the canonical data types shared by all modules.
// The domain layer is pure: no infrastructure dependencies, no I/O.
package domain

import "time"

// CountryRecord is the canonical representation of a country as resolved
// from the country-facts provider. The name is the stable key. A record is
// immutable once resolved for the duration of a request; it is refreshed
// wholesale when its cache entry expires, never partially mutated.
type CountryRecord struct {
	Name       string          `json:"name"`
	Capital    string          `json:"capital"`
	Population int64           `json:"population"`
	Area       float64         `json:"area"` // km²
	Region     string          `json:"region"`
	Subregion  string          `json:"subregion"`
	Currency   string          `json:"currency"` // ISO currency code
	FlagURL    string          `json:"flag_url"`
	Indicators IndicatorBundle `json:"indicators"`
}

// IndicatorBundle holds the optional statistical indicators attached to a
// country record. A nil field means the value is absent, not zero.
type IndicatorBundle struct {
	GDP                 *float64 `json:"gdp,omitempty"`
	GDPPerCapita        *float64 `json:"gdp_per_capita,omitempty"`
	HDI                 *float64 `json:"hdi,omitempty"`                  // in [0, 1]
	LifeExpectancy      *float64 `json:"life_expectancy,omitempty"`      // years
	InternetPenetration *float64 `json:"internet_penetration,omitempty"` // percent of population
}

// SeriesPoint is a single yearly observation. Value is nil when the
// provider reports no data for that year.
type SeriesPoint struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// IndicatorSeries is an ordered yearly time series for one (country,
// indicator) pair. Years are strictly increasing but not required to be
// contiguous, and contain no duplicates.
type IndicatorSeries struct {
	Country   string        `json:"country"`
	Indicator string        `json:"indicator"`
	Points    []SeriesPoint `json:"points"`
}

// WinnerTie is the winner label used when both sides hold exactly equal
// values. A metric with an absent side carries no winner at all.
const WinnerTie = "tie"

// MetricComparison is the per-metric outcome of comparing two countries.
// Winner is the name of the favored country, "tie" on exact equality, or
// empty when either value is absent.
type MetricComparison struct {
	Metric string   `json:"metric"`
	Value1 *float64 `json:"value1"`
	Value2 *float64 `json:"value2"`
	Winner string   `json:"winner,omitempty"`
}

// ComparisonResult is the full side-by-side comparison of two countries.
// Metrics preserve the declared policy-table order.
type ComparisonResult struct {
	Country1 CountryRecord      `json:"country1"`
	Country2 CountryRecord      `json:"country2"`
	Metrics  []MetricComparison `json:"metrics"`
}

// MergedPoint is one year on the shared axis of a merged series. A nil
// value means that side has no data for the year; it is never coerced to
// zero.
type MergedPoint struct {
	Year   int      `json:"year"`
	Value1 *float64 `json:"value1"`
	Value2 *float64 `json:"value2"`
}

// MergedSeries aligns two sparse yearly series onto one sorted year axis
// spanning the union of both inputs' years.
type MergedSeries struct {
	Country1  string        `json:"country1"`
	Country2  string        `json:"country2"`
	Indicator string        `json:"indicator"`
	Points    []MergedPoint `json:"points"`
}

// SavedComparison is a persisted comparison snapshot. Records are
// append-only: saving the same pair again creates a new independent record,
// so historical snapshots stay stable even if live data changes.
type SavedComparison struct {
	ID        string           `json:"id"`
	Owner     string           `json:"owner"`
	Country1  string           `json:"country1"`
	Country2  string           `json:"country2"`
	Result    ComparisonResult `json:"result"`
	CreatedAt time.Time        `json:"created_at"`
}

// YearRange bounds an indicator request, inclusive on both ends.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the range is well-formed.
func (r YearRange) Valid() bool {
	return r.Start > 0 && r.End >= r.Start
}

// Float64Ptr returns a pointer to v. Convenience for building optional
// indicator values.
func Float64Ptr(v float64) *float64 {
	return &v
}
