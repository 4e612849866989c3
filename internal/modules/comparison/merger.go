package comparison

import (
	"sort"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// Merge aligns two sparse yearly series onto the sorted union of their
// years. Absence is preserved as a nil value, never coerced to zero; no
// interpolation happens here.
//
// Pure and deterministic. The merged indicator code is taken from the
// first series; callers merge series of the same indicator.
func Merge(s1, s2 domain.IndicatorSeries) domain.MergedSeries {
	byYear1 := indexByYear(s1.Points)
	byYear2 := indexByYear(s2.Points)

	years := make([]int, 0, len(byYear1)+len(byYear2))
	seen := make(map[int]struct{}, len(byYear1)+len(byYear2))
	for year := range byYear1 {
		seen[year] = struct{}{}
		years = append(years, year)
	}
	for year := range byYear2 {
		if _, dup := seen[year]; !dup {
			years = append(years, year)
		}
	}
	sort.Ints(years)

	merged := domain.MergedSeries{
		Country1:  s1.Country,
		Country2:  s2.Country,
		Indicator: s1.Indicator,
		Points:    make([]domain.MergedPoint, 0, len(years)),
	}
	for _, year := range years {
		merged.Points = append(merged.Points, domain.MergedPoint{
			Year:   year,
			Value1: byYear1[year],
			Value2: byYear2[year],
		})
	}

	return merged
}

// indexByYear keeps the first point per year. Adapters already dedupe
// years, so the guard only matters for hand-built inputs.
func indexByYear(points []domain.SeriesPoint) map[int]*float64 {
	out := make(map[int]*float64, len(points))
	for _, p := range points {
		if _, dup := out[p.Year]; !dup {
			out[p.Year] = p.Value
		}
	}
	return out
}
