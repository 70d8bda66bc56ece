// Package api exposes the zone service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/meridian/internal/geoip"
	"github.com/UnknownOlympus/meridian/internal/longitude"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/zones"
)

const (
	maxBatchQueries     = 100
	defaultLookupsLimit = 20
	maxLookupsLimit     = 100
)

// Resolver is the part of the zone service the handlers use.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*service.Resolution, error)
	ResolveIP(ctx context.Context, ip string) (*service.Resolution, error)
	ResolveBatch(ctx context.Context, queries []string) []service.BatchResult
	Table() []zones.Zone
	Coverage(west, east float64) []zones.Zone
	RecentLookups(ctx context.Context, limit int) ([]models.Lookup, error)
}

// Handlers serves the zone endpoints.
type Handlers struct {
	log       *slog.Logger
	resolver  Resolver
	precision int
}

// NewHandlers creates a new Handlers instance. precision is the number of
// decimals used in rendered zone ranges.
func NewHandlers(log *slog.Logger, resolver Resolver, precision int) *Handlers {
	return &Handlers{log: log, resolver: resolver, precision: precision}
}

type zoneResponse struct {
	Zone  int     `json:"zone"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
	Range string  `json:"range"`
}

type resolutionResponse struct {
	*service.Resolution
	CenterRange string `json:"center_zone_range"`
	Description string `json:"description"`
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

type batchItem struct {
	Query      string              `json:"query"`
	Resolution *resolutionResponse `json:"resolution,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// GetZone handles GET /v1/zone?q=
func (h *Handlers) GetZone(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), query)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "Failed to resolve query", "query", query, "error", err)
		}
		respondWithError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.toResolutionResponse(res))
}

// GetIPZone handles GET /v1/zone/ip?ip=, defaulting to the caller's address.
func (h *Handlers) GetIPZone(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		ip = clientIP(r)
	}

	res, err := h.resolver.ResolveIP(r.Context(), ip)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.ErrorContext(r.Context(), "Failed to locate ip", "ip", ip, "error", err)
		}
		respondWithError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, h.toResolutionResponse(res))
}

// ResolveBatch handles POST /v1/zones/batch
func (h *Handlers) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Queries) == 0 {
		respondWithError(w, http.StatusBadRequest, "queries must not be empty")
		return
	}
	if len(req.Queries) > maxBatchQueries {
		respondWithError(w, http.StatusBadRequest, "too many queries, at most "+strconv.Itoa(maxBatchQueries)+" allowed")
		return
	}

	results := h.resolver.ResolveBatch(r.Context(), req.Queries)

	items := make([]batchItem, len(results))
	for i, result := range results {
		items[i] = batchItem{Query: result.Query}
		if result.Err != nil {
			items[i].Error = result.Err.Error()
			continue
		}
		items[i].Resolution = h.toResolutionResponse(result.Resolution)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"count":   len(items),
	})
}

// ListZones handles GET /v1/zones
func (h *Handlers) ListZones(w http.ResponseWriter, _ *http.Request) {
	table := h.resolver.Table()

	h.writeJSON(w, http.StatusOK, map[string]any{
		"zones": h.toZoneResponses(table),
		"count": len(table),
	})
}

// GetCoverage handles GET /v1/coverage?west=&east=
func (h *Handlers) GetCoverage(w http.ResponseWriter, r *http.Request) {
	west, ok := parseFinite(r.URL.Query().Get("west"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "west must be a number")
		return
	}
	east, ok := parseFinite(r.URL.Query().Get("east"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, "east must be a number")
		return
	}

	west, east = longitude.NormalizeEdge(west), longitude.NormalizeEdge(east)
	covered := h.resolver.Coverage(west, east)

	h.writeJSON(w, http.StatusOK, map[string]any{
		"west":   west,
		"east":   east,
		"extent": zones.FormatExtent(west, east, h.precision+2),
		"zones":  h.toZoneResponses(covered),
		"count":  len(covered),
	})
}

// ListLookups handles GET /v1/lookups?limit=
func (h *Handlers) ListLookups(w http.ResponseWriter, r *http.Request) {
	limit := defaultLookupsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLookupsLimit {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxLookupsLimit))
			return
		}
		limit = parsed
	}

	lookups, err := h.resolver.RecentLookups(r.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrNoHistory) {
			respondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "Failed to read lookups", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to read lookups")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"lookups": lookups,
		"count":   len(lookups),
	})
}

func (h *Handlers) toResolutionResponse(res *service.Resolution) *resolutionResponse {
	return &resolutionResponse{
		Resolution:  res,
		CenterRange: res.CenterZone.Describe(h.precision),
		Description: res.Describe(h.precision),
	}
}

func (h *Handlers) toZoneResponses(list []zones.Zone) []zoneResponse {
	out := make([]zoneResponse, len(list))
	for i, z := range list {
		out[i] = zoneResponse{Zone: z.Index, West: z.West, East: z.East, Range: z.Describe(h.precision)}
	}

	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyQuery), errors.Is(err, geoip.ErrInvalidIP):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPlaceNotFound), errors.Is(err, geoip.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoIPLocator):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseFinite parses a decimal, rejecting NaN and infinities.
func parseFinite(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("Failed to encode response", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
