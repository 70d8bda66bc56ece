// Package arc works with arcs of the longitude circle: splitting arcs that
// cross the antimeridian, testing overlap, and finding the shortest arc that
// covers a set of sample longitudes.
package arc

import "github.com/UnknownOlympus/meridian/internal/longitude"

// Interval is an arc traversed eastward from West to East, both in edge form.
// West > East means the arc crosses the antimeridian.
type Interval struct {
	West float64 `json:"west"`
	East float64 `json:"east"`
}

// Piece is a non-wrapping range [Lo, Hi] with Lo <= Hi.
type Piece struct {
	Lo float64
	Hi float64
}

// Wraps reports whether the interval crosses the antimeridian.
func (i Interval) Wraps() bool {
	return longitude.NormalizeEdge(i.West) > longitude.NormalizeEdge(i.East)
}

// Degenerate reports whether the interval is a single meridian. Edges are
// compared after normalization, so (-180, 180) is the whole circle.
func (i Interval) Degenerate() bool {
	return longitude.NormalizeEdge(i.West) == longitude.NormalizeEdge(i.East)
}

// Width is the eastward arc length from West to East in degrees.
func (i Interval) Width() float64 {
	var width float64
	for _, p := range i.Pieces() {
		width += p.Hi - p.Lo
	}

	return width
}

// Pieces splits the interval at the antimeridian.
func (i Interval) Pieces() []Piece {
	return Split(i.West, i.East)
}

// Split normalizes both edges and returns one piece when west <= east,
// otherwise [west, 180] and [-180, east].
func Split(west, east float64) []Piece {
	w := longitude.NormalizeEdge(west)
	e := longitude.NormalizeEdge(east)
	if w <= e {
		return []Piece{{Lo: w, Hi: e}}
	}

	return []Piece{{Lo: w, Hi: longitude.Half}, {Lo: -longitude.Half, Hi: e}}
}

// Intersects is an open overlap test: pieces that only share an edge do not intersect.
func Intersects(a, b Piece) bool {
	return a.Lo < b.Hi && b.Lo < a.Hi
}

// Overlaps reports whether any piece of a intersects any piece of b.
func Overlaps(a, b Interval) bool {
	for _, p := range a.Pieces() {
		for _, q := range b.Pieces() {
			if Intersects(p, q) {
				return true
			}
		}
	}

	return false
}
