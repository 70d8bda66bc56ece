package api

import (
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/meridian/internal/metrics"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// NewRouter registers the zone routes. Middlewares are applied in order, the
// first one being the outermost.
func NewRouter(h *Handlers, m *metrics.Metrics, middlewares ...Middleware) http.Handler {
	mux := http.NewServeMux()

	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /v1/zone", h.GetZone},
		{"GET /v1/zone/ip", h.GetIPZone},
		{"POST /v1/zones/batch", h.ResolveBatch},
		{"GET /v1/zones", h.ListZones},
		{"GET /v1/coverage", h.GetCoverage},
		{"GET /v1/lookups", h.ListLookups},
	}
	for _, route := range routes {
		mux.Handle(route.pattern, instrument(m, route.pattern, route.handler))
	}

	var handler http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func instrument(m *metrics.Metrics, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
