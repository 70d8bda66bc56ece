package longitude

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/UnknownOlympus/meridian/internal/models"
)

// ErrInvalidLongitude is returned when text does not start with a decimal longitude.
var ErrInvalidLongitude = errors.New("invalid longitude")

// Accepts "116.7", "116.7,39.9" and "116.7 39.9".
var lonPattern = regexp.MustCompile(`^\s*([-+]?\d+(?:\.\d+)?)\s*(?:[,\s]\s*([-+]?\d+(?:\.\d+)?))?\s*$`)

// Parse reads a longitude from free text. A trailing latitude is accepted and
// ignored. Values outside [-180, 180] are point-normalized, so 0..360 input works.
func Parse(text string) (float64, error) {
	coords, _, err := ParseCoordinates(text)
	if err != nil {
		return 0, err
	}

	return coords.Longitude, nil
}

// ParseCoordinates is Parse that also reports the latitude when one was given.
func ParseCoordinates(text string) (models.Coordinates, bool, error) {
	match := lonPattern.FindStringSubmatch(text)
	if match == nil {
		return models.Coordinates{}, false, fmt.Errorf("%w: %q", ErrInvalidLongitude, text)
	}

	lon, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return models.Coordinates{}, false, fmt.Errorf("%w: %q", ErrInvalidLongitude, text)
	}
	if lon < -Half || lon > Half {
		lon = NormalizePoint(lon)
	}

	coords := models.Coordinates{Longitude: lon}
	if match[2] == "" {
		return coords, false, nil
	}

	lat, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return coords, false, nil
	}
	coords.Latitude = lat

	return coords, true, nil
}
