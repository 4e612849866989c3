// Package restcountries provides the adapter for the RESTCountries v3.1
// country-facts provider.
//
// The adapter normalizes the upstream shape into domain.CountryRecord and
// maps every failure into the provider error taxonomy. It never retries:
// retry policy belongs to the request-handling layer, so a retry after a
// cache miss does not hammer a still-failing provider.
package restcountries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hamza-spc/CountryCompare/internal/domain"
)

// DefaultBaseURL is the public RESTCountries endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// recordFields limits the upstream payload to what CountryRecord needs.
const recordFields = "name,capital,population,area,region,subregion,currencies,flags"

// Client fetches country facts from RESTCountries.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a RESTCountries client. Every call is bounded by
// timeout; there is no retry inside the adapter.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "restcountries").Logger(),
	}
}

// countryPayload mirrors the subset of the RESTCountries v3.1 response we
// consume.
type countryPayload struct {
	Name struct {
		Common   string `json:"common"`
		Official string `json:"official"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Flags struct {
		PNG string `json:"png"`
		SVG string `json:"svg"`
	} `json:"flags"`
}

// GetCountry resolves one country by name.
func (c *Client) GetCountry(ctx context.Context, name string) (domain.CountryRecord, error) {
	endpoint := fmt.Sprintf("%s/name/%s?fields=%s", c.baseURL, url.PathEscape(name), recordFields)

	payloads, err := c.fetch(ctx, endpoint)
	if err != nil {
		return domain.CountryRecord{}, err
	}
	if len(payloads) == 0 {
		return domain.CountryRecord{}, fmt.Errorf("empty result for %q: %w", name, domain.ErrProviderMalformed)
	}

	// Name search can match several countries ("India" also matches
	// "British Indian Ocean Territory"); prefer the exact common-name match.
	chosen := payloads[0]
	for _, p := range payloads {
		if strings.EqualFold(p.Name.Common, name) {
			chosen = p
			break
		}
	}

	return normalize(chosen)
}

// ListCountries fetches the full country directory.
func (c *Client) ListCountries(ctx context.Context) ([]domain.CountryRecord, error) {
	endpoint := fmt.Sprintf("%s/all?fields=%s", c.baseURL, recordFields)

	payloads, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CountryRecord, 0, len(payloads))
	for _, p := range payloads {
		rec, err := normalize(p)
		if err != nil {
			c.log.Warn().Str("country", p.Name.Common).Err(err).Msg("Skipping unparseable country")
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]countryPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("request failed: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	var payloads []countryPayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", domain.ErrProviderMalformed)
	}

	return payloads, nil
}

// normalize converts the upstream payload into the canonical record.
func normalize(p countryPayload) (domain.CountryRecord, error) {
	if p.Name.Common == "" {
		return domain.CountryRecord{}, fmt.Errorf("missing country name: %w", domain.ErrProviderMalformed)
	}
	if p.Population < 0 || p.Area < 0 {
		return domain.CountryRecord{}, fmt.Errorf("negative population or area for %s: %w", p.Name.Common, domain.ErrProviderMalformed)
	}

	// Currencies arrive as a code-keyed map; pick the first code in sorted
	// order so the choice is deterministic.
	currency := ""
	if len(p.Currencies) > 0 {
		codes := make([]string, 0, len(p.Currencies))
		for code := range p.Currencies {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		currency = codes[0]
	}

	return domain.CountryRecord{
		Name:       p.Name.Common,
		Capital:    strings.Join(p.Capital, ", "),
		Population: p.Population,
		Area:       p.Area,
		Region:     p.Region,
		Subregion:  p.Subregion,
		Currency:   currency,
		FlagURL:    p.Flags.PNG,
	}, nil
}
