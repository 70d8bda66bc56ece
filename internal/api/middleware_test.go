package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		handler := CORS([]string{"*"})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
		req.Header.Set("Origin", "https://maps.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		handler := CORS([]string{"https://maps.example"})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
		req.Header.Set("Origin", "https://maps.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, "https://maps.example", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no grant", func(t *testing.T) {
		handler := CORS([]string{"https://maps.example"})(okHandler)
		req := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORS([]string{"*"})(okHandler)
		req := httptest.NewRequest(http.MethodOptions, "/v1/zones/batch", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	instance := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2})
	handler := RateLimit(instance, logger)(okHandler)

	for i := range 2 {
		req := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
	req.RemoteAddr = "127.0.0.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	other := httptest.NewRequest(http.MethodGet, "/v1/zones", nil)
	other.RemoteAddr = "10.0.0.9:4000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)

	assert.Equal(t, http.StatusOK, rec.Code, "clients are limited independently")
}

func TestRateLimit_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	handler := RateLimit(nil, logger)(okHandler)

	for range 10 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/zones", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestNewLimiter(t *testing.T) {
	instance, err := NewLimiter("", nil)
	require.NoError(t, err)
	assert.Nil(t, instance)

	instance, err = NewLimiter("off", nil)
	require.NoError(t, err)
	assert.Nil(t, instance)

	instance, err = NewLimiter("10-S", nil)
	require.NoError(t, err)
	require.NotNil(t, instance)
	assert.Equal(t, int64(10), instance.Rate.Limit)
	assert.Equal(t, time.Second, instance.Rate.Period)

	_, err = NewLimiter("ten per second", nil)
	require.Error(t, err)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		realIP       string
		want         string
	}{
		{"forwarded for takes precedence", "192.168.1.1:12345", "10.0.0.1, 10.0.0.2", "", "10.0.0.1"},
		{"real ip", "192.168.1.1:12345", "", "10.0.0.3", "10.0.0.3"},
		{"remote addr without port", "192.168.1.1:12345", "", "", "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:8080", "", "", "::1"},
		{"remote addr without port", "192.168.1.1", "", "", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
