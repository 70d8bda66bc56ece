package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/arc"
	"github.com/UnknownOlympus/meridian/internal/zones"
)

// Resolution is the answer to a single query.
type Resolution struct {
	Query      string        `json:"query"`
	Source     string        `json:"source"`
	Address    string        `json:"address,omitempty"`
	Note       string        `json:"note,omitempty"`
	CenterLon  float64       `json:"center_lon"`
	CenterZone zones.Zone    `json:"center_zone"`
	Extent     *arc.Interval `json:"extent,omitempty"`
	Covered    []zones.Zone  `json:"covered_zones,omitempty"`
	LookupID   int64         `json:"lookup_id,omitempty"`
}

// CoveredIndices returns the indices of the covered zones in ascending order.
func (r *Resolution) CoveredIndices() []int {
	out := make([]int, 0, len(r.Covered))
	for _, z := range r.Covered {
		out = append(out, z.Index)
	}

	return out
}

// Describe renders the resolution as text. Zone ranges use precision decimals,
// the place extent two more.
func (r *Resolution) Describe(precision int) string {
	var b strings.Builder

	if r.Note != "" {
		fmt.Fprintf(&b, "note: %s\n", r.Note)
	}
	fmt.Fprintf(&b, "input: %s\n", r.Query)

	if r.Extent != nil {
		fmt.Fprintf(&b, "  place extent: %s\n", zones.FormatExtent(r.Extent.West, r.Extent.East, precision+2))
	} else {
		fmt.Fprintf(&b, "  point longitude: %.*f°\n", precision+2, r.CenterLon)
	}

	if len(r.Covered) > 0 {
		indices := make([]string, 0, len(r.Covered))
		for _, idx := range r.CoveredIndices() {
			indices = append(indices, strconv.Itoa(idx))
		}
		fmt.Fprintf(&b, "  covered zones: %s\n", strings.Join(indices, ", "))
		for _, z := range r.Covered {
			fmt.Fprintf(&b, "    - zone %d: %s (half-open)\n", z.Index, z.Describe(precision))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "  zone: %d\n", r.CenterZone.Index)
	fmt.Fprintf(&b, "  zone range: %s (half-open)\n", r.CenterZone.Describe(precision))

	return b.String()
}
