package models

import "time"

// Place is what a geocoding provider hands back for a free-text query.
type Place struct {
	Query   string  `json:"query"`             // Query is the text that was geocoded.
	Address string  `json:"address,omitempty"` // Address is the display name reported by the provider.
	BBox    *Extent `json:"bbox,omitempty"`    // BBox is the longitude extent of the place, if the provider knows it.
	Coordinates
	// Geometry is the decoded GeoJSON geometry of the place, if any. It is never persisted.
	Geometry any `json:"-"`
}

// Lookup is a single resolved query kept in the lookup history.
type Lookup struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	Source     string    `json:"source"`
	CenterLon  float64   `json:"center_lon"`
	CenterZone int       `json:"center_zone"`
	Covered    []int     `json:"covered"`
	CreatedAt  time.Time `json:"created_at"`
}
