package geocoding

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/UnknownOlympus/meridian/internal/longitude"
	"github.com/UnknownOlympus/meridian/internal/models"
)

// Provider is an interface that defines a method for geocoding a place name.
// The Geocode method takes a context and a free-text query as input,
// and returns the matched place (center, optional longitude extent and geometry)
// and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, query string) (*models.Place, error)
}

var errNotFinite = errors.New("value is not a finite number")

// finite reports whether every value is neither NaN nor infinite.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// parseDegrees parses a decimal coordinate. NaN and infinities are rejected.
func parseDegrees(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if !finite(v) {
		return 0, errNotFinite
	}

	return v, nil
}

// newExtent edge-normalizes a west/east pair. It returns nil unless both are finite.
func newExtent(west, east float64) *models.Extent {
	if !finite(west, east) {
		return nil
	}

	return &models.Extent{West: longitude.NormalizeEdge(west), East: longitude.NormalizeEdge(east)}
}

// extentFromStrings parses a west/east pair given as decimal strings.
// It returns nil if either value is not a number.
func extentFromStrings(west, east string) *models.Extent {
	w, err := parseDegrees(west)
	if err != nil {
		return nil
	}
	e, err := parseDegrees(east)
	if err != nil {
		return nil
	}

	return newExtent(w, e)
}
