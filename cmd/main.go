package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/meridian/internal/api"
	"github.com/UnknownOlympus/meridian/internal/cache"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/geoip"
	logging "github.com/UnknownOlympus/meridian/internal/logger"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/zones"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// healthCheck is a dependency probed by /healthz.
type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := logging.Setup(cfg.Env, os.Stdout)

	zoneCfg, err := zones.NewConfig(cfg.Zones.EastBoundary, cfg.Zones.Width, cfg.Zones.Count)
	if err != nil {
		log.Fatalf("Invalid zone configuration: %v", err)
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	var checks []healthCheck

	// The lookup history is optional, it is enabled by DB_HOST.
	var history repository.Interface
	if cfg.Database.Host != "" {
		dtb, errDB := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if errDB != nil {
			log.Fatalf("Failed to connect to DB: %v", errDB)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		if errDB = repo.Migrate(ctx); errDB != nil {
			log.Fatalf("Failed to migrate DB: %v", errDB)
		}
		history = repo
		checks = append(checks, healthCheck{name: "postgres", ping: dtb.Ping})
	} else {
		logger.WarnContext(ctx, "DB_HOST is not set, lookup history disabled")
	}

	// The place cache is optional as well, it is enabled by REDIS_ADDR.
	var placeCache cache.Interface
	redisClient := cache.Open(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if redisClient != nil {
		defer redisClient.Close()

		placeCache = cache.New(redisClient, cfg.CacheTTL, logger)
		checks = append(checks, healthCheck{name: "redis", ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	// Create geocoding provider using factory pattern based on configuration
	// This allows runtime selection between different providers (Google, Visicom, Nominatim).
	providerType, err := geocoding.ParseProviderType(cfg.ProviderType)
	if err != nil {
		log.Fatalf("Invalid provider: %v (supported: %v)", err, geocoding.SupportedProviders())
	}

	rateLimit := 50
	providerConfig := geocoding.ProviderConfig{
		Type:      providerType,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.ProviderURL,
		RateLimit: rateLimit / max(cfg.Workers, 1),
		Languages: cfg.Languages,
		Logger:    logger,
	}

	geoProvider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	defer stop()

	logger.InfoContext(ctx, "Geocoding provider initialized", "type", providerType)

	zoneService := service.NewZoneService(
		logger,
		geoProvider,
		string(providerType), // Provider name for metrics
		placeCache,
		history,
		appMetrics,
		zoneCfg,
		cfg.Workers,
	)

	if cfg.GeoIPDB != "" {
		locator, errGeo := geoip.Open(cfg.GeoIPDB)
		if errGeo != nil {
			log.Fatalf("Failed to open GeoIP database: %v", errGeo)
		}
		defer locator.Close()

		zoneService.UseIPLocator(locator)
		logger.InfoContext(ctx, "IP geolocation enabled", "database", cfg.GeoIPDB)
	}

	limiter, err := api.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		log.Fatalf("Failed to create rate limiter: %v", err)
	}

	handlers := api.NewHandlers(logger, zoneService, cfg.Precision)
	router := api.NewRouter(handlers, appMetrics, api.CORS(cfg.CORSOrigins), api.RateLimit(limiter, logger))

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, checks, cfg.HealthPort)

	apiServer := newServer(cfg.HTTPPort, router)
	go func() {
		logger.InfoContext(ctx, "Starting API server", "port", cfg.HTTPPort, "zones", zoneCfg.ZoneCount())
		if errSrv := apiServer.ListenAndServe(); errSrv != nil && !errors.Is(errSrv, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "API server failed", "error", errSrv)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = apiServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "API server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

func newServer(port int, handler http.Handler) *http.Server {
	readTimeout := 5
	writeTimeout := 30

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - checks: The optional dependencies (postgres, redis) to ping.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	checks []healthCheck,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		for _, check := range checks {
			if err := check.ping(req.Context()); err != nil {
				status, body = http.StatusServiceUnavailable, check.name+" ping failed"
				break
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	server := newServer(port, mux)
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
