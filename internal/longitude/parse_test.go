package longitude_test

import (
	"testing"

	"github.com/UnknownOlympus/meridian/internal/longitude"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"plain", "116.7", 116.7},
		{"negative", "-74.006", -74.006},
		{"explicit plus", "+12", 12},
		{"with latitude comma", "116.7,39.9", 116.7},
		{"with latitude comma and space", "116.7, 39.9", 116.7},
		{"with latitude space", "116.7 39.9", 116.7},
		{"surrounding whitespace", "  30.5  ", 30.5},
		{"zero to 360 input", "200", -160},
		{"antimeridian kept", "180", 180},
		{"out of range antimeridian", "540", -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lon, err := longitude.Parse(tt.input)

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, lon, 1e-9)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "", "116.7abc", "Bangkok, Thailand", "1.2.3", "12,", ".5", "116.7,39.9,10"} {
		t.Run(input, func(t *testing.T) {
			_, err := longitude.Parse(input)

			require.Error(t, err)
			assert.ErrorIs(t, err, longitude.ErrInvalidLongitude)
		})
	}
}

func TestParseCoordinates(t *testing.T) {
	t.Run("longitude and latitude", func(t *testing.T) {
		coords, hasLat, err := longitude.ParseCoordinates("116.7,39.9")

		require.NoError(t, err)
		assert.True(t, hasLat)
		assert.InDelta(t, 116.7, coords.Longitude, 1e-9)
		assert.InDelta(t, 39.9, coords.Latitude, 1e-9)
	})

	t.Run("longitude only", func(t *testing.T) {
		coords, hasLat, err := longitude.ParseCoordinates("-74.006")

		require.NoError(t, err)
		assert.False(t, hasLat)
		assert.InDelta(t, -74.006, coords.Longitude, 1e-9)
	})
}
