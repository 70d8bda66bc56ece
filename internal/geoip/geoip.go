// Package geoip locates IP addresses with a MaxMind GeoIP2/GeoLite2 City database.
package geoip

import (
	"errors"
	"fmt"
	"net"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/oschwald/geoip2-golang"
)

var (
	// ErrInvalidIP is returned for text that is not an IP address.
	ErrInvalidIP = errors.New("invalid ip address")
	// ErrNotFound is returned when the database has no location for the address.
	ErrNotFound = errors.New("ip address not found in database")
)

// Location is where the database places an address.
type Location struct {
	models.Coordinates
	TimeZone string `json:"time_zone,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Reader is the subset of geoip2.Reader used by Locator.
type Reader interface {
	City(ipAddress net.IP) (*geoip2.City, error)
	Close() error
}

// Locator resolves IP addresses to locations.
type Locator struct {
	reader Reader
}

// Open opens the City database at path.
func Open(path string) (*Locator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}

	return New(reader), nil
}

// New returns a Locator backed by reader.
func New(reader Reader) *Locator {
	return &Locator{reader: reader}
}

// Locate returns the location of ip.
func (l *Locator) Locate(ip string) (*Location, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	record, err := l.reader.City(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", ip, err)
	}

	// Unknown addresses decode to an empty record.
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 && record.Location.TimeZone == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ip)
	}

	return &Location{
		Coordinates: models.Coordinates{
			Longitude: record.Location.Longitude,
			Latitude:  record.Location.Latitude,
		},
		TimeZone: record.Location.TimeZone,
		City:     record.City.Names["en"],
		Country:  record.Country.IsoCode,
	}, nil
}

// Close releases the database.
func (l *Locator) Close() error {
	return l.reader.Close()
}
