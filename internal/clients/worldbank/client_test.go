package worldbank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

func disabledLog() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// gdpJSON is the World Bank [metadata, points] shape: points arrive in
// descending year order and may carry null values.
const gdpJSON = `[
	{"page": 1, "pages": 1, "per_page": 50, "total": 3},
	[
		{"date": "2022", "value": 130912000000, "country": {"value": "Morocco"}},
		{"date": "2021", "value": null, "country": {"value": "Morocco"}},
		{"date": "2020", "value": 114724000000, "country": {"value": "Morocco"}}
	]
]`

func TestGetSeries_NormalizesToAscendingYears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/country/MAR/indicator/NY.GDP.MKTP.CD", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "2020:2022", r.URL.Query().Get("date"))
		_, _ = w.Write([]byte(gdpJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, disabledLog())

	series, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2022})
	require.NoError(t, err)

	assert.Equal(t, "MAR", series.Country)
	assert.Equal(t, "NY.GDP.MKTP.CD", series.Indicator)
	require.Len(t, series.Points, 3)

	assert.Equal(t, 2020, series.Points[0].Year)
	require.NotNil(t, series.Points[0].Value)
	assert.Equal(t, 114724000000.0, *series.Points[0].Value)

	assert.Equal(t, 2021, series.Points[1].Year)
	assert.Nil(t, series.Points[1].Value, "null upstream stays absent, never zero")

	assert.Equal(t, 2022, series.Points[2].Year)
	require.NotNil(t, series.Points[2].Value)
	assert.Equal(t, 130912000000.0, *series.Points[2].Value)
}

func TestGetSeries_ErrorMessageIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"message": [{"id": "120", "value": "Invalid value"}]}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, disabledLog())

	_, err := c.GetSeries(context.Background(), "XXX", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2022})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSeries_TruncatedBodyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"page": 1}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, disabledLog())

	_, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2022})
	assert.ErrorIs(t, err, domain.ErrProviderMalformed)
}

func TestGetSeries_BadJSONIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, disabledLog())

	_, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2022})
	assert.ErrorIs(t, err, domain.ErrProviderMalformed)
}

func TestGetSeries_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, disabledLog())

	_, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2022})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGetSeries_SkipsNonYearlyAndDuplicateDates(t *testing.T) {
	payload := `[
		{"page": 1},
		[
			{"date": "2021Q3", "value": 1.0},
			{"date": "2020", "value": 2.0},
			{"date": "2020", "value": 3.0}
		]
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, disabledLog())

	series, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2020, End: 2021})
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 2020, series.Points[0].Year)
	assert.Equal(t, 2.0, *series.Points[0].Value)
}

func TestGetSeries_RejectsInvalidRange(t *testing.T) {
	c := NewClient("http://unused", time.Second, disabledLog())

	_, err := c.GetSeries(context.Background(), "MAR", "NY.GDP.MKTP.CD", domain.YearRange{Start: 2022, End: 2020})
	assert.Error(t, err)
}
