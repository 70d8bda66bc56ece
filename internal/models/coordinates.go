package models

// Coordinates represents a geographical point defined by its longitude and latitude.
type Coordinates struct {
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
}

// Extent is a west/east longitude pair describing a region of interest, independent of latitude.
// West may be greater than East when the region crosses the antimeridian.
type Extent struct {
	West float64 `json:"west"`
	East float64 `json:"east"`
}
