// Command zonecli resolves places and longitudes to zones interactively.
//
// Queries given as arguments are resolved and the command exits; otherwise
// queries are read line by line from stdin until q, quit or exit.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UnknownOlympus/meridian/internal/cache"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	logging "github.com/UnknownOlympus/meridian/internal/logger"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/zones"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	logger := logging.Setup(cfg.Env, os.Stderr)

	zoneCfg, err := zones.NewConfig(cfg.Zones.EastBoundary, cfg.Zones.Width, cfg.Zones.Count)
	if err != nil {
		log.Fatalf("Invalid zone configuration: %v", err)
	}

	providerType, err := geocoding.ParseProviderType(cfg.ProviderType)
	if err != nil {
		log.Fatalf("Invalid provider: %v (supported: %v)", err, geocoding.SupportedProviders())
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      providerType,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.ProviderURL,
		Languages: cfg.Languages,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	var placeCache cache.Interface
	if client := cache.Open(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); client != nil {
		defer client.Close()
		placeCache = cache.New(client, cfg.CacheTTL, logger)
	}

	zoneService := service.NewZoneService(
		logger,
		provider,
		string(providerType),
		placeCache,
		nil,
		metrics.NewMetrics(prometheus.NewRegistry()),
		zoneCfg,
		cfg.Workers,
	)

	if args := os.Args[1:]; len(args) > 0 {
		for _, query := range args {
			resolve(ctx, os.Stdout, zoneService, query, cfg.Precision)
		}
		return
	}

	printBanner(os.Stdout, zoneCfg, cfg.Precision)
	run(ctx, os.Stdin, os.Stdout, zoneService, cfg.Precision)
}

// printBanner describes the partition in use.
func printBanner(out io.Writer, cfg zones.Config, precision int) {
	table := zones.Table(cfg)
	anchor := table[0]

	fmt.Fprintf(out, "\nLongitude zones (%d zones, %g° each)\n", len(table), cfg.Width)
	fmt.Fprintf(out, "Zone %d = %s, its east edge is the anchor boundary\n", anchor.Index, anchor.Describe(precision))
	fmt.Fprintln(out, "Enter a place name or a longitude; q to quit.")
	fmt.Fprintln(out)
}

// run reads queries from in until EOF, a quit command or ctx cancellation.
func run(ctx context.Context, in io.Reader, out io.Writer, zs *service.ZoneService, precision int) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "place/longitude> ")
		if ctx.Err() != nil || !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		switch strings.ToLower(query) {
		case "q", "quit", "exit":
			return
		}

		resolve(ctx, out, zs, query, precision)
	}
}

func resolve(ctx context.Context, out io.Writer, zs *service.ZoneService, query string, precision int) {
	res, err := zs.Resolve(ctx, query)
	switch {
	case errors.Is(err, service.ErrPlaceNotFound):
		fmt.Fprintf(out, "could not find %q, try a more specific name or a longitude\n\n", query)
		return
	case err != nil:
		fmt.Fprintf(out, "error: %v\n\n", err)
		return
	}

	fmt.Fprintln(out, res.Describe(precision))
}
