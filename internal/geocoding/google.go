package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider returns a GoogleProvider backed by the given client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode looks the query up with the Google Maps Geocoding API. The longitude
// extent comes from the result bounds, or from the viewport when a result has no bounds.
func (gp *GoogleProvider) Geocode(ctx context.Context, query string) (*models.Place, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query)

	req := maps.GeocodingRequest{Address: query}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	result := geocodeResponse[0]
	location := result.Geometry.Location

	place := &models.Place{
		Query:       query,
		Address:     result.FormattedAddress,
		Coordinates: models.Coordinates{Longitude: location.Lng, Latitude: location.Lat},
	}

	bounds := result.Geometry.Bounds
	if bounds == (maps.LatLngBounds{}) {
		bounds = result.Geometry.Viewport
	}
	if bounds != (maps.LatLngBounds{}) {
		place.BBox = newExtent(bounds.SouthWest.Lng, bounds.NorthEast.Lng)
	}

	return place, nil
}
