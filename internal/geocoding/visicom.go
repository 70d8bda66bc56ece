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

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

const (
	visicomCentroidLen = 2 // [lon, lat]
	visicomBBoxLen     = 4 // [west, south, east, north]
)

// VisicomProvider implements geocoding using Visicom API.
type VisicomProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Visicom API
	apiKey  string        // API key with geocoding access
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// Common errors for Visicom provider.
var (
	ErrVisicomEmptyResponse = errors.New("visicom API returned empty response")
	ErrVisicomEmptyQuery    = errors.New("visicom provider got empty query")
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnathorized   = errors.New("visicom API unathorized (invalid API key)")
)

// visicomFeature is the subset of a Visicom feature used for zone lookups.
type visicomFeature struct {
	Centroid struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geo_centroid"`
	Outline    any       `json:"geo_polygon"` // GeoJSON outline, when the object has one
	BBox       []float64 `json:"bbox"`
	Properties struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"properties"`
}

// NewVisicomProvider creates a new Visicom geocoding provider.
func NewVisicomProvider(apiKey string, rateLimit int, log *slog.Logger) *VisicomProvider {
	const timeout = 10

	return NewVisicomProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		apiKey,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewVisicomProviderWithClient allows injecting custom HTTP client.
func NewVisicomProviderWithClient(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *VisicomProvider {
	return &VisicomProvider{
		client:  client,
		baseURL: VisicomBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// WithBaseURL points the provider at another geocode endpoint, e.g. another language variant.
func (vp *VisicomProvider) WithBaseURL(baseURL string) *VisicomProvider {
	vp.baseURL = baseURL

	return vp
}

// Geocode resolves a place name into its centroid and longitude extent using Visicom API.
func (vp *VisicomProvider) Geocode(ctx context.Context, query string) (*models.Place, error) {
	if err := vp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	vp.log.DebugContext(ctx, "Geocoding using Visicom", "query", query)

	if query == "" {
		return nil, ErrVisicomEmptyQuery
	}

	feature, err := vp.search(ctx, query)
	if err != nil {
		return nil, err
	}

	centroid := feature.Centroid.Coordinates
	switch len(centroid) {
	case 0:
		return nil, ErrVisicomEmptyResponse
	case visicomCentroidLen:
	default:
		return nil, ErrVisicomInvalidCoords
	}

	place := &models.Place{
		Query:       query,
		Address:     strings.TrimSpace(feature.Properties.Name + " " + feature.Properties.Address),
		Coordinates: models.Coordinates{Longitude: centroid[0], Latitude: centroid[1]},
		Geometry:    feature.Outline,
	}
	if len(feature.BBox) == visicomBBoxLen {
		place.BBox = newExtent(feature.BBox[0], feature.BBox[2])
	}

	vp.log.InfoContext(ctx, "Visicom found result",
		"query", query, "lat", place.Latitude, "lon", place.Longitude, "bbox", feature.BBox)

	return place, nil
}

// search runs one geocode request and decodes the top feature.
func (vp *VisicomProvider) search(ctx context.Context, query string) (*visicomFeature, error) {
	reqURL, err := url.Parse(vp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("text", query)
	params.Set("limit", "1")
	params.Set("key", vp.apiKey)
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := vp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrVisicomUnathorized
	default:
		body, _ := io.ReadAll(resp.Body)
		vp.log.ErrorContext(ctx, "Visicom API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("visicom API returned status %d: %s", resp.StatusCode, string(body))
	}

	var feature visicomFeature
	if err = json.NewDecoder(resp.Body).Decode(&feature); err != nil {
		return nil, fmt.Errorf("failed to decode visicom response: %w", err)
	}

	return &feature, nil
}
