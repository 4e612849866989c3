package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

func series(country, indicator string, points ...domain.SeriesPoint) domain.IndicatorSeries {
	return domain.IndicatorSeries{Country: country, Indicator: indicator, Points: points}
}

func point(year int, value float64) domain.SeriesPoint {
	return domain.SeriesPoint{Year: year, Value: &value}
}

func gap(year int) domain.SeriesPoint {
	return domain.SeriesPoint{Year: year}
}

func TestMerge_UnionOfYearsWithExplicitGaps(t *testing.T) {
	s1 := series("A", "NY.GDP.MKTP.CD", point(2010, 5), point(2012, 7))
	s2 := series("B", "NY.GDP.MKTP.CD", point(2011, 3))

	merged := Merge(s1, s2)

	assert.Equal(t, "A", merged.Country1)
	assert.Equal(t, "B", merged.Country2)
	assert.Equal(t, "NY.GDP.MKTP.CD", merged.Indicator)
	require.Len(t, merged.Points, 3)

	assert.Equal(t, 2010, merged.Points[0].Year)
	assert.Equal(t, 5.0, *merged.Points[0].Value1)
	assert.Nil(t, merged.Points[0].Value2)

	assert.Equal(t, 2011, merged.Points[1].Year)
	assert.Nil(t, merged.Points[1].Value1)
	assert.Equal(t, 3.0, *merged.Points[1].Value2)

	assert.Equal(t, 2012, merged.Points[2].Year)
	assert.Equal(t, 7.0, *merged.Points[2].Value1)
	assert.Nil(t, merged.Points[2].Value2)
}

func TestMerge_SharedYearsCarryBothValues(t *testing.T) {
	s1 := series("A", "SP.POP.TOTL", point(2020, 1), point(2021, 2))
	s2 := series("B", "SP.POP.TOTL", point(2020, 10), point(2022, 30))

	merged := Merge(s1, s2)

	require.Len(t, merged.Points, 3)
	assert.Equal(t, 1.0, *merged.Points[0].Value1)
	assert.Equal(t, 10.0, *merged.Points[0].Value2)
}

func TestMerge_StrictlyIncreasingNoDuplicates(t *testing.T) {
	s1 := series("A", "X", point(2015, 1), point(2011, 2), point(2013, 3))
	s2 := series("B", "X", point(2013, 4), point(2012, 5))

	merged := Merge(s1, s2)

	require.Len(t, merged.Points, 4)
	for i := 1; i < len(merged.Points); i++ {
		assert.Greater(t, merged.Points[i].Year, merged.Points[i-1].Year)
	}
}

func TestMerge_AbsentUpstreamValueStaysAbsent(t *testing.T) {
	// A year can be present in a series with a null value; merging must
	// not turn that into zero.
	s1 := series("A", "X", gap(2020))
	s2 := series("B", "X", point(2020, 9))

	merged := Merge(s1, s2)

	require.Len(t, merged.Points, 1)
	assert.Nil(t, merged.Points[0].Value1)
	assert.Equal(t, 9.0, *merged.Points[0].Value2)
}

func TestMerge_EmptyInputs(t *testing.T) {
	merged := Merge(series("A", "X"), series("B", "X"))
	assert.Empty(t, merged.Points)

	merged = Merge(series("A", "X", point(2020, 1)), series("B", "X"))
	require.Len(t, merged.Points, 1)
	assert.Nil(t, merged.Points[0].Value2)
}

func TestTrendOf(t *testing.T) {
	s := series("A", "X", point(2020, 10), gap(2021), point(2022, 14))

	trend := TrendOf(s)
	require.NotNil(t, trend)
	assert.InDelta(t, 2.0, trend.Slope, 1e-9)
	assert.InDelta(t, 12.0, trend.Mean, 1e-9)
	assert.Equal(t, 2, trend.Points)
}

func TestTrendOf_TooFewPointsIsNil(t *testing.T) {
	assert.Nil(t, TrendOf(series("A", "X", point(2020, 10))))
	assert.Nil(t, TrendOf(series("A", "X", gap(2020), gap(2021))))
}
