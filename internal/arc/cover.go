package arc

import (
	"sort"

	"github.com/UnknownOlympus/meridian/internal/longitude"
)

// MinCover returns the shortest arc containing every longitude in lons.
// The arc is the complement of the largest gap between circularly adjacent
// samples; when several gaps tie, the first in ascending order wins.
// It returns false for an empty input.
func MinCover(lons []float64) (Interval, bool) {
	if len(lons) == 0 {
		return Interval{}, false
	}

	pts := make([]float64, len(lons))
	for i, lon := range lons {
		pts[i] = longitude.To360(lon)
	}
	sort.Float64s(pts)

	if pts[0] == pts[len(pts)-1] {
		edge := longitude.FromCircle(pts[0])
		return Interval{West: edge, East: edge}, true
	}

	maxGap := -1.0
	maxIdx := 0
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		gap := longitude.Mod(next-pts[i], longitude.Circle)
		if gap > maxGap {
			maxGap = gap
			maxIdx = i
		}
	}

	// The largest gap runs from pts[maxIdx] to the sample after it.
	return Interval{
		West: longitude.FromCircle(pts[(maxIdx+1)%len(pts)]),
		East: longitude.FromCircle(pts[maxIdx]),
	}, true
}
