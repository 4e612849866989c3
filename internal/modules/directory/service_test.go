package directory

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/Hamza-spc/CountryCompare/internal/cache"
	"github.com/Hamza-spc/CountryCompare/internal/clientdata"
	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

func disabledLog() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

type fakeCountryClient struct {
	calls     atomic.Int64
	listCalls atomic.Int64
	countries map[string]domain.CountryRecord // keyed lowercase
	err       error
}

func (f *fakeCountryClient) GetCountry(ctx context.Context, name string) (domain.CountryRecord, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.CountryRecord{}, f.err
	}
	rec, ok := f.countries[name]
	if !ok {
		return domain.CountryRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeCountryClient) ListCountries(ctx context.Context) ([]domain.CountryRecord, error) {
	f.listCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.CountryRecord, 0, len(f.countries))
	for _, rec := range f.countries {
		out = append(out, rec)
	}
	return out, nil
}

type staticBundles struct {
	bundle domain.IndicatorBundle
}

func (s staticBundles) Bundle(ctx context.Context, country string) domain.IndicatorBundle {
	return s.bundle
}

func testWarm(t *testing.T) *clientdata.Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range clientdata.AllTables {
		_, err = db.Exec(`CREATE TABLE ` + table + ` (
			key        TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`)
		require.NoError(t, err)
	}

	return clientdata.NewRepository(db)
}

func morocco() domain.CountryRecord {
	return domain.CountryRecord{
		Name:       "Morocco",
		Capital:    "Rabat",
		Population: 36910560,
		Area:       446550,
		Region:     "Africa",
		Subregion:  "Northern Africa",
		Currency:   "MAD",
		FlagURL:    "https://flagcdn.com/w320/ma.png",
	}
}

func TestResolve_CachesRecord(t *testing.T) {
	client := &fakeCountryClient{countries: map[string]domain.CountryRecord{"Morocco": morocco()}}
	svc := NewService(cache.New(disabledLog()), client, nil, nil, time.Minute, disabledLog())

	first, err := svc.Resolve(context.Background(), "Morocco")
	require.NoError(t, err)
	assert.Equal(t, "Rabat", first.Capital)

	second, err := svc.Resolve(context.Background(), "Morocco")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), client.calls.Load(), "second resolve served from cache")
}

func TestResolve_EnrichesWithIndicatorBundle(t *testing.T) {
	client := &fakeCountryClient{countries: map[string]domain.CountryRecord{"Morocco": morocco()}}
	gdp := 130.9e9
	bundles := staticBundles{bundle: domain.IndicatorBundle{GDP: &gdp}}
	svc := NewService(cache.New(disabledLog()), client, bundles, nil, time.Minute, disabledLog())

	rec, err := svc.Resolve(context.Background(), "Morocco")
	require.NoError(t, err)
	require.NotNil(t, rec.Indicators.GDP)
	assert.Equal(t, gdp, *rec.Indicators.GDP)
	assert.Nil(t, rec.Indicators.HDI)
}

func TestResolve_UnknownCountry(t *testing.T) {
	client := &fakeCountryClient{countries: map[string]domain.CountryRecord{}}
	svc := NewService(cache.New(disabledLog()), client, nil, nil, time.Minute, disabledLog())

	_, err := svc.Resolve(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, domain.ErrUnknownCountry)

	_, err = svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrUnknownCountry)
}

func TestResolve_UnavailableWithoutWarmIsDataUnavailable(t *testing.T) {
	client := &fakeCountryClient{err: domain.ErrProviderUnavailable}
	svc := NewService(cache.New(disabledLog()), client, nil, nil, time.Minute, disabledLog())

	_, err := svc.Resolve(context.Background(), "Morocco")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestResolve_UnavailableServesStaleWarmCopy(t *testing.T) {
	warm := testWarm(t)
	client := &fakeCountryClient{countries: map[string]domain.CountryRecord{"Morocco": morocco()}}
	svc := NewService(cache.New(disabledLog()), client, nil, warm, time.Minute, disabledLog())

	// Prime both cache tiers, then knock out the provider and the
	// in-memory entry.
	_, err := svc.Resolve(context.Background(), "Morocco")
	require.NoError(t, err)

	client.err = domain.ErrProviderUnavailable
	svc.cache.Invalidate("country:morocco")

	rec, err := svc.Resolve(context.Background(), "Morocco")
	require.NoError(t, err)
	assert.Equal(t, "Rabat", rec.Capital)
}

func TestResolve_MalformedDegradesToDataUnavailable(t *testing.T) {
	client := &fakeCountryClient{err: domain.ErrProviderMalformed}
	svc := NewService(cache.New(disabledLog()), client, nil, nil, time.Minute, disabledLog())

	_, err := svc.Resolve(context.Background(), "Morocco")
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
}

func TestList_CachesAndFallsBackToWarmCopy(t *testing.T) {
	warm := testWarm(t)
	client := &fakeCountryClient{countries: map[string]domain.CountryRecord{"Morocco": morocco()}}
	svc := NewService(cache.New(disabledLog()), client, nil, warm, time.Minute, disabledLog())

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), client.listCalls.Load())

	client.err = domain.ErrProviderUnavailable
	svc.cache.Invalidate(allCountriesKey)

	records, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
