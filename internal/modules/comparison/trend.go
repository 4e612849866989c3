package comparison

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// Trend summarizes one side of a merged series: least-squares slope per
// year, mean value, and the number of years with data.
type Trend struct {
	Slope  float64 `json:"slope"`
	Mean   float64 `json:"mean"`
	Points int     `json:"points"`
}

// TrendOf fits a least-squares line through the present points of a
// series. Absent years are skipped, not treated as zero. Returns nil
// when fewer than two points carry values, since a slope needs two.
func TrendOf(series domain.IndicatorSeries) *Trend {
	var xs, ys []float64
	for _, p := range series.Points {
		if p.Value == nil {
			continue
		}
		xs = append(xs, float64(p.Year))
		ys = append(ys, *p.Value)
	}
	if len(xs) < 2 {
		return nil
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return &Trend{
		Slope:  slope,
		Mean:   stat.Mean(ys, nil),
		Points: len(xs),
	}
}
