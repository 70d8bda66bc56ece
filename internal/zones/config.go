package zones

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/meridian/internal/longitude"
)

// Defaults used when nothing else is configured.
const (
	DefaultWidth        = 36.0
	DefaultEastBoundary = 116.7
	DefaultCount        = 10
)

const divisibilityTolerance = 1e-9

// Configuration errors.
var (
	ErrInvalidWidth  = errors.New("zone width must be positive, at most 180 and divide 360 evenly")
	ErrCountMismatch = errors.New("zone count does not match 360 / width")
)

// Config holds the partition parameters. The anchor zone (index Count-1) has
// its east edge on EastBoundary; indices decrease by one per step east.
type Config struct {
	EastBoundary float64 `json:"east_boundary"` // East edge of the anchor zone.
	Width        float64 `json:"width"`         // Width of every zone in degrees.
	Count        int     `json:"count"`         // Number of zones; zero derives 360 / Width.
}

// DefaultConfig returns the 10 x 36° partition anchored at 116.7°E.
func DefaultConfig() Config {
	return Config{EastBoundary: DefaultEastBoundary, Width: DefaultWidth, Count: DefaultCount}
}

// NewConfig builds and validates a configuration. A zero count is derived from the width.
func NewConfig(eastBoundary, width float64, count int) (Config, error) {
	cfg := Config{EastBoundary: eastBoundary, Width: width, Count: count}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Count == 0 {
		cfg.Count = cfg.derivedCount()
	}

	return cfg, nil
}

// Validate checks that the configuration partitions the circle cleanly.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Width > longitude.Half || math.IsNaN(c.Width) {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, c.Width)
	}

	n := longitude.Circle / c.Width
	if math.Abs(n-math.Round(n)) > divisibilityTolerance {
		return fmt.Errorf("%w: %v", ErrInvalidWidth, c.Width)
	}
	if c.Count != 0 && c.Count != c.derivedCount() {
		return fmt.Errorf("%w: count %d, width %v", ErrCountMismatch, c.Count, c.Width)
	}
	if math.IsNaN(c.EastBoundary) || math.IsInf(c.EastBoundary, 0) {
		return fmt.Errorf("invalid east boundary: %v", c.EastBoundary)
	}

	return nil
}

// ZoneCount is the number of zones in the partition.
func (c Config) ZoneCount() int {
	if c.Count > 0 {
		return c.Count
	}

	return c.derivedCount()
}

// AnchorIndex is the index of the zone whose east edge is EastBoundary.
func (c Config) AnchorIndex() int {
	return c.ZoneCount() - 1
}

// origin is the west edge of the anchor zone.
func (c Config) origin() float64 {
	east := longitude.NormalizePoint(c.EastBoundary)
	return longitude.NormalizePoint(east - c.Width)
}

func (c Config) derivedCount() int {
	return int(math.Round(longitude.Circle / c.Width))
}
