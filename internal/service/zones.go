package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/meridian/internal/arc"
	"github.com/UnknownOlympus/meridian/internal/cache"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/geoip"
	"github.com/UnknownOlympus/meridian/internal/longitude"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/zones"
)

// Sources of the longitude behind a resolution.
const (
	SourceLiteral  = "literal"  // the query itself was a longitude
	SourceGeocoded = "geocoded" // the provider was asked
	SourceCache    = "cache"    // a cached provider answer was used
	SourceGeoIP    = "geoip"    // an IP address was located
)

// Service errors.
var (
	ErrEmptyQuery    = errors.New("empty query")
	ErrPlaceNotFound = errors.New("place could not be geocoded")
	ErrNoHistory     = errors.New("lookup history is not configured")
	ErrNoIPLocator   = errors.New("ip geolocation is not configured")
	ErrNotFinite     = errors.New("longitude is not a finite number")
)

// IPLocator resolves IP addresses to locations.
type IPLocator interface {
	Locate(ip string) (*geoip.Location, error)
}

// ZoneService resolves free-text queries (a longitude or a place name) to
// zones, with optional caching of provider answers and a lookup history.
type ZoneService struct {
	log          *slog.Logger         // Logger for logging service activities
	provider     geocoding.Provider   // Geocoding provider for place names
	providerName string               // Name of the provider for metrics labeling
	cache        cache.Interface      // Place cache, nil when disabled
	repo         repository.Interface // Lookup history, nil when disabled
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	zones        zones.Config         // Zone partition used for every lookup
	numWorkers   int                  // Number of concurrent workers for batches
	ips          IPLocator            // IP geolocation, nil when disabled
}

// NewZoneService creates a new instance of ZoneService.
// placeCache and repo may be nil to disable caching and history respectively.
// zoneCfg must already be validated.
func NewZoneService(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	placeCache cache.Interface,
	repo repository.Interface,
	metrics *metrics.Metrics,
	zoneCfg zones.Config,
	numWorkers int,
) *ZoneService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &ZoneService{
		log:          log,
		provider:     provider,
		providerName: providerName,
		cache:        placeCache,
		repo:         repo,
		metrics:      metrics,
		zones:        zoneCfg,
		numWorkers:   numWorkers,
	}
}

// UseIPLocator enables ResolveIP.
func (zs *ZoneService) UseIPLocator(locator IPLocator) {
	zs.ips = locator
}

// Config returns the zone partition the service uses.
func (zs *ZoneService) Config() zones.Config {
	return zs.zones
}

// Table returns the full zone partition.
func (zs *ZoneService) Table() []zones.Zone {
	return zones.Table(zs.zones)
}

// Coverage returns the zones overlapped by the extent [west, east].
func (zs *ZoneService) Coverage(west, east float64) []zones.Zone {
	return zones.Covering(zs.zones, longitude.NormalizeEdge(west), longitude.NormalizeEdge(east))
}

// Resolve maps a query to its zone. A query that parses as a longitude is
// located directly; anything else is geocoded, and when the place has a
// longitude extent every zone it overlaps is listed too.
func (zs *ZoneService) Resolve(ctx context.Context, query string) (*Resolution, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if lon, err := longitude.Parse(query); err == nil {
		res, errLoc := zs.locate(query, SourceLiteral, lon)
		if errLoc != nil {
			return nil, errLoc
		}
		zs.record(ctx, res)
		return res, nil
	}

	place, source, err := zs.lookupPlace(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlaceNotFound, err)
	}

	res, err := zs.locate(query, source, place.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlaceNotFound, err)
	}
	res.Address = place.Address
	if place.Address != "" {
		res.Note = "matched: " + place.Address
	}
	if place.BBox != nil {
		res.Extent = &arc.Interval{West: place.BBox.West, East: place.BBox.East}
		res.Covered = zones.Covering(zs.zones, place.BBox.West, place.BBox.East)
	}

	zs.record(ctx, res)

	return res, nil
}

// ResolveIP maps the location of an IP address to its zone.
func (zs *ZoneService) ResolveIP(ctx context.Context, ip string) (*Resolution, error) {
	if zs.ips == nil {
		return nil, ErrNoIPLocator
	}

	ip = strings.TrimSpace(ip)
	loc, err := zs.ips.Locate(ip)
	if err != nil {
		return nil, err
	}

	res, err := zs.locate(ip, SourceGeoIP, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", geoip.ErrNotFound, err)
	}
	if place := strings.Join(nonEmpty(loc.City, loc.Country), ", "); place != "" {
		res.Address = place
		res.Note = "located: " + place
	}
	if loc.TimeZone != "" {
		res.Note = strings.TrimSpace(res.Note + " (time zone " + loc.TimeZone + ")")
	}

	zs.record(ctx, res)

	return res, nil
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}

// RecentLookups returns the latest recorded lookups, newest first.
func (zs *ZoneService) RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error) {
	if zs.repo == nil {
		return nil, ErrNoHistory
	}

	return zs.repo.RecentLookups(ctx, limit)
}

func (zs *ZoneService) locate(query, source string, lon float64) (*Resolution, error) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		zs.log.Warn("Refusing to locate a non-finite longitude", "query", query, "source", source)
		return nil, ErrNotFinite
	}

	zs.metrics.Lookups.WithLabelValues(source).Inc()

	return &Resolution{
		Query:      query,
		Source:     source,
		CenterLon:  longitude.NormalizePoint(lon),
		CenterZone: zones.Locate(zs.zones, lon),
	}, nil
}

// lookupPlace consults the cache and falls back to the provider.
func (zs *ZoneService) lookupPlace(ctx context.Context, query string) (*models.Place, string, error) {
	if zs.cache != nil {
		place, err := zs.cache.Get(ctx, query)
		switch {
		case err == nil:
			zs.metrics.CacheRequests.WithLabelValues("hit").Inc()
			return place, SourceCache, nil
		case errors.Is(err, cache.ErrCacheMiss):
			zs.metrics.CacheRequests.WithLabelValues("miss").Inc()
		default:
			zs.metrics.CacheRequests.WithLabelValues("error").Inc()
			zs.log.WarnContext(ctx, "Place cache unavailable", "query", query, "error", err)
		}
	}

	startTime := time.Now()
	place, err := zs.provider.Geocode(ctx, query)
	zs.metrics.RequestSeconds.WithLabelValues(zs.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		zs.metrics.APIErrors.Inc()
		zs.log.ErrorContext(ctx, "Failed to geocode", "query", query, "error", err)

		if zs.repo != nil {
			if errRec := zs.repo.RecordFailure(ctx, query, err.Error()); errRec != nil {
				zs.log.ErrorContext(ctx, "Could not record geocoding failure", "query", query, "error", errRec)
			}
		}
		return nil, "", err
	}

	place.BBox = tightenExtent(place)

	if zs.cache != nil {
		if err = zs.cache.Set(ctx, query, place); err != nil {
			zs.log.WarnContext(ctx, "Failed to cache place", "query", query, "error", err)
		}
	}

	return place, SourceGeocoded, nil
}

// tightenExtent edge-normalizes the provider extent. Places crossing the
// antimeridian are often reported with a whole-globe box; those are replaced
// by the shortest arc covering the place outline when one is available.
func tightenExtent(place *models.Place) *models.Extent {
	if place.BBox == nil {
		return nil
	}

	west := longitude.NormalizeEdge(place.BBox.West)
	east := longitude.NormalizeEdge(place.BBox.East)
	if west == -longitude.Half && east == longitude.Half {
		if cover, ok := arc.MinCover(arc.GeometryLongitudes(place.Geometry)); ok {
			west = longitude.NormalizeEdge(cover.West)
			east = longitude.NormalizeEdge(cover.East)
		}
	}

	return &models.Extent{West: west, East: east}
}

func (zs *ZoneService) record(ctx context.Context, res *Resolution) {
	if zs.repo == nil {
		return
	}

	lookup := models.Lookup{
		Query:      res.Query,
		Source:     res.Source,
		CenterLon:  res.CenterLon,
		CenterZone: res.CenterZone.Index,
		Covered:    res.CoveredIndices(),
	}

	id, err := zs.repo.RecordLookup(ctx, lookup)
	if err != nil {
		zs.log.ErrorContext(ctx, "Failed to record lookup", "query", res.Query, "error", err)
		return
	}
	res.LookupID = id
}

// BatchResult is the outcome of one query of a batch.
type BatchResult struct {
	Query      string      `json:"query"`
	Resolution *Resolution `json:"resolution,omitempty"`
	Err        error       `json:"-"`
}

type batchJob struct {
	idx   int
	query string
}

// ResolveBatch resolves queries concurrently with the configured number of
// workers. Results are returned in input order.
func (zs *ZoneService) ResolveBatch(ctx context.Context, queries []string) []BatchResult {
	results := make([]BatchResult, len(queries))
	if len(queries) == 0 {
		return results
	}

	workers := min(zs.numWorkers, len(queries))

	zs.log.InfoContext(ctx, "Resolving batch", "jobs", len(queries), "num_workers", workers)

	jobs := make(chan batchJob, len(queries))
	var wgr sync.WaitGroup

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go zs.worker(ctx, i, &wgr, jobs, results)
	}

	for idx, query := range queries {
		jobs <- batchJob{idx: idx, query: query}
	}
	close(jobs)

	wgr.Wait()
	zs.log.InfoContext(ctx, "Batch finished", "jobs", len(queries))

	return results
}

// worker resolves jobs until the channel is drained. Each job writes only its own result slot.
func (zs *ZoneService) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	jobs <-chan batchJob,
	results []BatchResult,
) {
	defer wg.Done()
	for job := range jobs {
		zs.metrics.ActiveWorkers.Inc()
		zs.log.DebugContext(ctx, "Resolving query", "worker", idx, "query", job.query)

		res, err := zs.Resolve(ctx, job.query)
		results[job.idx] = BatchResult{Query: job.query, Resolution: res, Err: err}

		zs.metrics.ActiveWorkers.Dec()
	}
}
