// Package comparison builds two-country comparisons: the per-metric
// winner table, the merged series view, and the append-only store of
// saved comparison snapshots.
package comparison

import (
	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// direction declares which side of a numeric ordering wins a metric.
type direction int

const (
	higherIsBetter direction = iota
	lowerIsBetter
)

// metricPolicy is one row of the declared comparison policy table.
type metricPolicy struct {
	key     string
	dir     direction
	extract func(domain.CountryRecord) *float64
}

// metricPolicies is the declared policy table. Winners are decided by
// this table, never inferred from the values. Order here is the order of
// metrics in every ComparisonResult.
var metricPolicies = []metricPolicy{
	{key: "population", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		if r.Population < 0 {
			return nil
		}
		v := float64(r.Population)
		return &v
	}},
	{key: "area", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		if r.Area <= 0 {
			return nil
		}
		v := r.Area
		return &v
	}},
	{key: "gdp", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		return r.Indicators.GDP
	}},
	{key: "gdp_per_capita", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		return r.Indicators.GDPPerCapita
	}},
	{key: "hdi", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		return r.Indicators.HDI
	}},
	{key: "life_expectancy", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		return r.Indicators.LifeExpectancy
	}},
	{key: "internet_penetration", dir: higherIsBetter, extract: func(r domain.CountryRecord) *float64 {
		return r.Indicators.InternetPenetration
	}},
}

// Compare builds the per-metric comparison of two resolved records.
//
// Pure and deterministic. A metric absent on both sides is omitted; a
// metric absent on one side is emitted with the present value and no
// winner. Exact equality yields "tie" with no epsilon tolerance, since
// source values arrive already rounded by the provider.
func Compare(r1, r2 domain.CountryRecord) domain.ComparisonResult {
	result := domain.ComparisonResult{
		Country1: r1,
		Country2: r2,
	}

	for _, policy := range metricPolicies {
		v1 := policy.extract(r1)
		v2 := policy.extract(r2)
		if v1 == nil && v2 == nil {
			continue
		}

		mc := domain.MetricComparison{
			Metric: policy.key,
			Value1: v1,
			Value2: v2,
		}
		if v1 != nil && v2 != nil {
			mc.Winner = decide(*v1, *v2, policy.dir, r1.Name, r2.Name)
		}

		result.Metrics = append(result.Metrics, mc)
	}

	return result
}

func decide(v1, v2 float64, dir direction, name1, name2 string) string {
	if v1 == v2 {
		return domain.WinnerTie
	}
	firstWins := v1 > v2
	if dir == lowerIsBetter {
		firstWins = !firstWins
	}
	if firstWins {
		return name1
	}
	return name2
}
