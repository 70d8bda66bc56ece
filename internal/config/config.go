package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the zone service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - HTTPPort: The port of the zone API server.
// - HealthPort: The port of the monitoring server (/healthz, /metrics).
// - ProviderType: The geocoding provider to use (nominatim, google, visicom).
// - APIKey: The provider API key (required for google and visicom).
// - ProviderURL: Endpoint override, e.g. a self-hosted Nominatim.
// - Languages: Accept-Language values tried in order by Nominatim.
// - Workers: The number of concurrent workers for batch lookups.
// - Zones: The longitude zone partition.
// - Precision: Decimals used when rendering zone ranges.
// - CORSOrigins: Origins allowed to call the API, "*" allows any.
// - RateLimit: Per-client request rate such as "300-M" (per minute), "off" disables limiting.
// - CacheTTL: How long geocoded places stay in Redis.
// - GeoIPDB: Path of a GeoLite2/GeoIP2 City database, IP lookups are disabled without it.
// - Redis: Place cache connection, disabled when Addr is empty.
// - Database: Lookup history connection, disabled when Host is empty.
type Config struct {
	Env          string
	HTTPPort     int
	HealthPort   int
	ProviderType string
	APIKey       string
	ProviderURL  string
	Languages    []string
	Workers      int
	Zones        ZoneConfig
	Precision    int
	CORSOrigins  []string
	RateLimit    string
	CacheTTL     time.Duration
	GeoIPDB      string
	Redis        RedisConfig
	Database     PostgresConfig
}

// ZoneConfig describes the longitude partition. Count 0 derives it from Width.
type ZoneConfig struct {
	EastBoundary float64 // East edge of the anchor zone.
	Width        float64 // Zone width in degrees.
	Count        int     // Expected number of zones.
}

// RedisConfig holds the place cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

var defaults = map[string]string{
	"MERIDIAN_ENV":           "production",
	"MERIDIAN_HTTP_PORT":     "8081",
	"MERIDIAN_HEALTH_PORT":   "8080",
	"MERIDIAN_PROVIDER_TYPE": "nominatim",
	"MERIDIAN_WORKERS":       "4",
	"MERIDIAN_ZONE_WIDTH":    "36",
	"MERIDIAN_EAST_BOUNDARY": "116.7",
	"MERIDIAN_ZONE_COUNT":    "0",
	"MERIDIAN_PRECISION":     "4",
	"MERIDIAN_LANGUAGES":     "zh,en",
	"MERIDIAN_CORS_ORIGINS":  "*",
	"MERIDIAN_RATE_LIMIT":    "300-M",
	"MERIDIAN_CACHE_TTL":     "24h",
	"REDIS_DB":               "0",
	"DB_PORT":                "5432",
}

// MustLoad reads the configuration from the environment. A .env file (or the
// file named by MERIDIAN_ENV_FILE) is loaded first; variables already set in
// the environment take precedence over it.
func MustLoad() *Config {
	if envFile := os.Getenv("MERIDIAN_ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic("failed to load environment file " + envFile)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	httpPort, err := strconv.Atoi(v.GetString("MERIDIAN_HTTP_PORT"))
	if err != nil {
		panic("failed to parse port for api server from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("MERIDIAN_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("MERIDIAN_WORKERS"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	width, err := strconv.ParseFloat(v.GetString("MERIDIAN_ZONE_WIDTH"), 64)
	if err != nil {
		panic("failed to parse zone width from configuration")
	}

	east, err := strconv.ParseFloat(v.GetString("MERIDIAN_EAST_BOUNDARY"), 64)
	if err != nil {
		panic("failed to parse east boundary from configuration")
	}

	count, err := strconv.Atoi(v.GetString("MERIDIAN_ZONE_COUNT"))
	if err != nil {
		panic("failed to parse zone count from configuration, must be an integer types")
	}

	precision, err := strconv.Atoi(v.GetString("MERIDIAN_PRECISION"))
	if err != nil {
		panic("failed to parse precision from configuration, must be an integer types")
	}

	cacheTTL, err := time.ParseDuration(v.GetString("MERIDIAN_CACHE_TTL"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	redisDB, err := strconv.Atoi(v.GetString("REDIS_DB"))
	if err != nil {
		panic("failed to parse redis db from configuration, must be an integer types")
	}

	return &Config{
		Env:          v.GetString("MERIDIAN_ENV"),
		HTTPPort:     httpPort,
		HealthPort:   healthPort,
		ProviderType: v.GetString("MERIDIAN_PROVIDER_TYPE"),
		APIKey:       v.GetString("MERIDIAN_PROVIDER_KEY"),
		ProviderURL:  v.GetString("MERIDIAN_PROVIDER_URL"),
		Languages:    splitList(v.GetString("MERIDIAN_LANGUAGES")),
		Workers:      workers,
		Zones: ZoneConfig{
			EastBoundary: east,
			Width:        width,
			Count:        count,
		},
		Precision:   precision,
		CORSOrigins: splitList(v.GetString("MERIDIAN_CORS_ORIGINS")),
		RateLimit:   v.GetString("MERIDIAN_RATE_LIMIT"),
		CacheTTL:    cacheTTL,
		GeoIPDB:     v.GetString("MERIDIAN_GEOIP_DB"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}

// splitList splits a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
