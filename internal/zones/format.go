package zones

import (
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/arc"
	"github.com/UnknownOlympus/meridian/internal/longitude"
)

// DefaultPrecision is the number of decimals used when rendering zone ranges.
const DefaultPrecision = 4

// FormatZoneRange renders a half-open zone span. Spans crossing the
// antimeridian are shown as the union of their two pieces.
func FormatZoneRange(west, east float64, precision int) string {
	pieces := arc.Split(west, east)
	if len(pieces) == 1 {
		return fmt.Sprintf("[%s, %s)", degrees(pieces[0].Lo, precision), degrees(pieces[0].Hi, precision))
	}

	return fmt.Sprintf("crosses ±180°: [%s, %s) ∪ [%s, %s)",
		degrees(pieces[0].Lo, precision), degrees(longitude.Half, precision),
		degrees(-longitude.Half, precision), degrees(pieces[1].Hi, precision))
}

// FormatExtent renders a closed place extent. A degenerate extent is marked,
// since it is usually a very narrow or incomplete bounding box.
func FormatExtent(west, east float64, precision int) string {
	if (arc.Interval{West: west, East: east}).Degenerate() {
		return fmt.Sprintf("[%s, %s] (single meridian: degenerate or incomplete extent)",
			degrees(west, precision), degrees(east, precision))
	}

	pieces := arc.Split(west, east)
	if len(pieces) == 1 {
		return fmt.Sprintf("[%s, %s]", degrees(pieces[0].Lo, precision), degrees(pieces[0].Hi, precision))
	}

	return fmt.Sprintf("crosses ±180°: [%s, %s] ∪ [%s, %s]",
		degrees(pieces[0].Lo, precision), degrees(longitude.Half, precision),
		degrees(-longitude.Half, precision), degrees(pieces[1].Hi, precision))
}

// Describe renders the zone span with the given precision.
func (z Zone) Describe(precision int) string {
	return FormatZoneRange(z.West, z.East, precision)
}

func degrees(v float64, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}

	return fmt.Sprintf("%.*f°", precision, v)
}
