package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public Nominatim search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

const nominatimUserAgent = "Meridian-Zone-Service/1.0 (https://github.com/UnknownOlympus/meridian)"

// nominatimBBoxLen is the arity of a Nominatim boundingbox: [south, north, west, east].
const nominatimBBoxLen = 4

// DefaultNominatimLanguages are tried in order when no languages are configured.
var DefaultNominatimLanguages = []string{"zh", "en"}

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   string        // Base URL for the Nominatim API
	log       *slog.Logger  // Logger for logging operations
	languages []string      // Accept-Language values, tried in order
	limiter   *rate.Limiter // Keeps request rate within the usage policy
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents one search hit returned by the Nominatim API.
type nominatimResponse struct {
	Lat         string   `json:"lat"`          // Latitude as string
	Lon         string   `json:"lon"`          // Longitude as string
	DisplayName string   `json:"display_name"` // Human readable address
	BoundingBox []string `json:"boundingbox"`  // [south, north, west, east] as strings
	GeoJSON     any      `json:"geojson"`      // Place outline, present with polygon_geojson=1
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint and limits itself to one request per second.
func NewNominatimProvider(log *slog.Logger, languages ...string) *NominatimProvider {
	const timeout = 10
	np := NewNominatimProviderWithClient(&http.Client{Timeout: timeout * time.Second}, log, languages...)
	np.limiter = rate.NewLimiter(rate.Every(time.Second), 1)

	return np
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client
// and no rate limit. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(client HTTPClient, log *slog.Logger, languages ...string) *NominatimProvider {
	if len(languages) == 0 {
		languages = DefaultNominatimLanguages
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		log:       log,
		languages: languages,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: nominatimUserAgent,
	}
}

// WithBaseURL points the provider at another search endpoint, such as a self-hosted Nominatim.
func (np *NominatimProvider) WithBaseURL(baseURL string) *NominatimProvider {
	np.baseURL = baseURL

	return np
}

// Geocode converts a place name to a center point, a longitude extent and an outline.
//
// The full query is tried in every configured language before it is
// progressively simplified by dropping trailing comma-separated components
// (e.g. "Bangkok, Thailand" falls back to "Bangkok").
//
// Note: Nominatim has a rate limit of 1 request/second for fair use.
func (np *NominatimProvider) Geocode(ctx context.Context, query string) (*models.Place, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "query", query)

	variations := np.generateAddressFallbacks(query)

	for idx, variation := range variations {
		for _, lang := range np.languages {
			place, err := np.geocodeSingle(ctx, variation, lang)
			if err == nil {
				if idx == 0 {
					np.log.DebugContext(ctx, "Geocoded with full query", "query", variation, "language", lang)
				} else {
					np.log.InfoContext(ctx, "Geocoded using fallback query",
						"original", query,
						"fallback", variation,
						"fallback_level", idx,
						"language", lang)
				}
				place.Query = query
				return place, nil
			}

			// Anything but an empty result is final (API error, invalid coords, etc.)
			if !errors.Is(err, ErrNominatimEmptyResponse) {
				return nil, err
			}

			np.log.DebugContext(ctx, "Query variation returned no results, trying fallback",
				"variation", variation,
				"fallback_level", idx,
				"language", lang)
		}
	}

	np.log.WarnContext(
		ctx,
		"All query fallbacks exhausted",
		"query",
		query,
		"variations_tried",
		len(variations)*len(np.languages),
	)
	return nil, ErrNominatimEmptyResponse
}

// generateAddressFallbacks creates a list of progressively simpler query variations.
func (np *NominatimProvider) generateAddressFallbacks(address string) []string {
	if address == "" {
		return []string{""}
	}

	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		addVariation(parts[0])
	}

	return variations
}

// geocodeSingle performs a single search request without fallback logic.
func (np *NominatimProvider) geocodeSingle(ctx context.Context, query, lang string) (*models.Place, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("polygon_geojson", "1")
	params.Set("accept-language", lang)
	reqURL.RawQuery = params.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept-Language", lang)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err)
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}
	hit := results[0]

	np.log.DebugContext(ctx, "Nominatim found result",
		"lat", hit.Lat, "lon", hit.Lon, "boundingbox", hit.BoundingBox, "address", hit.DisplayName)

	lat, err := parseDegrees(hit.Lat)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, hit.Lat)
	}
	lon, err := parseDegrees(hit.Lon)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, hit.Lon)
	}

	place := &models.Place{
		Query:       query,
		Address:     hit.DisplayName,
		Coordinates: models.Coordinates{Longitude: lon, Latitude: lat},
		Geometry:    hit.GeoJSON,
	}

	// A boundingbox of the wrong arity is ignored.
	if len(hit.BoundingBox) == nominatimBBoxLen {
		place.BBox = extentFromStrings(hit.BoundingBox[2], hit.BoundingBox[3])
	}

	return place, nil
}
