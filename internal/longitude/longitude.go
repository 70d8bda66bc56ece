// Package longitude canonicalizes longitudes on the 360° circle.
//
// Two forms are used. The edge form maps into [-180, 180] and keeps +180
// distinct from -180, which is needed for the east edge of anything touching
// the antimeridian. The point form maps into [-180, 180) and is used whenever
// a longitude denotes a location rather than a boundary.
package longitude

import "math"

const (
	// Circle is the circumference of the longitude circle in degrees.
	Circle = 360.0
	// Half is the antimeridian longitude.
	Half = 180.0
)

// Mod returns x modulo m in [0, m) for any sign of x.
func Mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r = math.Mod(r+m, m)
	}

	return r
}

// NormalizeEdge reduces lon into [-180, 180]. A positive input that reduces to
// the antimeridian is returned as +180.
func NormalizeEdge(lon float64) float64 {
	if lon >= -Half && lon <= Half {
		return lon
	}

	x := Mod(lon+Half, Circle) - Half
	if x == -Half && lon > 0 {
		return Half
	}

	return x
}

// NormalizePoint reduces lon into [-180, 180), collapsing +180 to -180.
func NormalizePoint(lon float64) float64 {
	x := NormalizeEdge(lon)
	if x == Half {
		return -Half
	}

	return x
}

// To360 maps lon into [0, 360).
func To360(lon float64) float64 {
	return Mod(lon, Circle)
}

// FromCircle converts a [0, 360) longitude back to edge form.
func FromCircle(lon360 float64) float64 {
	if lon360 > Half {
		return lon360 - Circle
	}

	return lon360
}
