package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("MERIDIAN_ENV", "local")
	t.Setenv("MERIDIAN_PROVIDER_TYPE", "google")
	t.Setenv("MERIDIAN_PROVIDER_KEY", "testAPIKey")
	t.Setenv("MERIDIAN_PROVIDER_URL", "http://nominatim.internal/search")
	t.Setenv("MERIDIAN_LANGUAGES", "uk, en ,")
	t.Setenv("MERIDIAN_ZONE_WIDTH", "15")
	t.Setenv("MERIDIAN_EAST_BOUNDARY", "7.5")
	t.Setenv("MERIDIAN_ZONE_COUNT", "24")
	t.Setenv("MERIDIAN_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MERIDIAN_GEOIP_DB", "/var/lib/GeoLite2-City.mmdb")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "google", cfg.ProviderType)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, "http://nominatim.internal/search", cfg.ProviderURL)
	assert.Equal(t, []string{"uk", "en"}, cfg.Languages)
	assert.Equal(t, config.ZoneConfig{EastBoundary: 7.5, Width: 15, Count: 24}, cfg.Zones)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "/var/lib/GeoLite2-City.mmdb", cfg.GeoIPDB)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func Test_MustLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"MERIDIAN_ENV", "MERIDIAN_HTTP_PORT", "MERIDIAN_HEALTH_PORT", "MERIDIAN_PROVIDER_TYPE",
		"MERIDIAN_WORKERS", "MERIDIAN_ZONE_WIDTH", "MERIDIAN_EAST_BOUNDARY", "MERIDIAN_ZONE_COUNT",
		"MERIDIAN_PRECISION", "MERIDIAN_LANGUAGES", "MERIDIAN_CORS_ORIGINS", "MERIDIAN_RATE_LIMIT",
		"MERIDIAN_CACHE_TTL", "REDIS_ADDR", "REDIS_DB", "DB_PORT",
	} {
		unsetEnv(t, key)
	}

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8081, cfg.HTTPPort)
	assert.Equal(t, 8080, cfg.HealthPort)
	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, config.ZoneConfig{EastBoundary: 116.7, Width: 36, Count: 0}, cfg.Zones)
	assert.Equal(t, 4, cfg.Precision)
	assert.Equal(t, []string{"zh", "en"}, cfg.Languages)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)

	unsetEnv(t, "MERIDIAN_ZONE_WIDTH")
	unsetEnv(t, "MERIDIAN_CACHE_TTL")
	t.Setenv("MERIDIAN_WORKERS", "7")

	file := filet.TmpFile(t, "", "MERIDIAN_ZONE_WIDTH=30\nMERIDIAN_CACHE_TTL=90m\nMERIDIAN_WORKERS=2\n")
	t.Setenv("MERIDIAN_ENV_FILE", file.Name())

	cfg := config.MustLoad()

	assert.InDelta(t, 30.0, cfg.Zones.Width, 0)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 7, cfg.Workers, "environment wins over the file")
}

func TestMustLoad_MissingEnvFile(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	t.Setenv("MERIDIAN_ENV_FILE", dir+"/missing.env")

	assert.PanicsWithValue(t, "failed to load environment file "+dir+"/missing.env", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		key   string
		panic string
	}{
		{"MERIDIAN_HTTP_PORT", "failed to parse port for api server from configuration"},
		{"MERIDIAN_HEALTH_PORT", "failed to parse port for monitoring server from configuration"},
		{"MERIDIAN_WORKERS", "failed to parse workers from configuration, must be an integer types"},
		{"MERIDIAN_ZONE_WIDTH", "failed to parse zone width from configuration"},
		{"MERIDIAN_EAST_BOUNDARY", "failed to parse east boundary from configuration"},
		{"MERIDIAN_ZONE_COUNT", "failed to parse zone count from configuration, must be an integer types"},
		{"MERIDIAN_PRECISION", "failed to parse precision from configuration, must be an integer types"},
		{"MERIDIAN_CACHE_TTL", "failed to parse cache ttl from configuration"},
		{"REDIS_DB", "failed to parse redis db from configuration, must be an integer types"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, "error_value")

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}
