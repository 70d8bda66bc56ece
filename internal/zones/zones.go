// Package zones partitions the longitude circle into equal-width zones
// anchored at a configurable boundary, and maps longitudes and extents onto them.
//
// Every function takes its Config explicitly; call Config.Validate (or build
// the config with NewConfig) before using it.
package zones

import (
	"math"
	"sort"

	"github.com/UnknownOlympus/meridian/internal/arc"
	"github.com/UnknownOlympus/meridian/internal/longitude"
)

// Zone is one band of the partition, spanning [West, East) eastward.
// West > East means the zone crosses the antimeridian.
type Zone struct {
	Index int     `json:"zone"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Contains reports whether the point lon falls in the zone's half-open span.
func (z Zone) Contains(lon float64) bool {
	x := longitude.NormalizePoint(lon)
	if z.West <= z.East {
		return z.West <= x && x < z.East
	}

	return x >= z.West || x < z.East
}

// Interval returns the zone span as an arc.
func (z Zone) Interval() arc.Interval {
	return arc.Interval{West: z.West, East: z.East}
}

// Table builds the full partition. Zones are ordered by steps east from the
// anchor zone's west edge, not by index.
func Table(cfg Config) []Zone {
	count := cfg.ZoneCount()
	origin := cfg.origin()

	table := make([]Zone, 0, count)
	for steps := range count {
		table = append(table, zoneAt(cfg, origin, steps))
	}

	return table
}

// Locate returns the zone containing the point lon without building the table.
// It agrees with a scan of Table on every longitude, edges included. A
// non-finite lon has no zone; the anchor zone is returned for it.
func Locate(cfg Config, lon float64) Zone {
	origin := cfg.origin()
	x := longitude.NormalizePoint(lon)
	if math.IsNaN(x) || math.IsInf(lon, 0) {
		return zoneAt(cfg, origin, 0)
	}

	diff := longitude.Mod(x-origin, longitude.Circle)
	steps := int(math.Floor(diff / cfg.Width))

	// Rounding in the division can land one step off near an edge.
	for _, step := range []int{steps, steps - 1, steps + 1} {
		if zone := zoneAt(cfg, origin, step); zone.Contains(x) {
			return zone
		}
	}

	return zoneAt(cfg, origin, steps)
}

// Covering lists every zone that overlaps the extent [west, east], which may
// cross the antimeridian. Zones touching the extent only at an edge are not
// included. The result is sorted by zone index.
func Covering(cfg Config, west, east float64) []Zone {
	query := arc.Split(west, east)

	var covered []Zone
	for _, zone := range Table(cfg) {
		if hits(query, arc.Split(zone.West, zone.East)) {
			covered = append(covered, zone)
		}
	}

	sort.Slice(covered, func(i, j int) bool { return covered[i].Index < covered[j].Index })

	return covered
}

func hits(query, zone []arc.Piece) bool {
	for _, q := range query {
		for _, z := range zone {
			if arc.Intersects(q, z) {
				return true
			}
		}
	}

	return false
}

// zoneAt builds the zone steps east of the anchor. Neighbouring zones share
// the exact same edge value.
func zoneAt(cfg Config, origin float64, steps int) Zone {
	count := cfg.ZoneCount()
	steps = ((steps % count) + count) % count

	return Zone{
		Index: (cfg.AnchorIndex() - steps + count) % count,
		West:  edgeAt(cfg, origin, steps),
		East:  edgeAt(cfg, origin, (steps+1)%count),
	}
}

func edgeAt(cfg Config, origin float64, steps int) float64 {
	return longitude.NormalizePoint(origin + float64(steps)*cfg.Width)
}
