// Package cache keeps geocoded places in Redis so repeated lookups of the same
// place name skip the external provider.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "meridian:place:"

// ErrCacheMiss is returned when no place is cached for a query.
var ErrCacheMiss = errors.New("place not cached")

// Interface is implemented by place caches.
type Interface interface {
	Get(ctx context.Context, query string) (*models.Place, error)
	Set(ctx context.Context, query string, place *models.Place) error
}

// Client is the subset of the go-redis client used by PlaceCache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// PlaceCache stores places as JSON under a normalized query key.
type PlaceCache struct {
	client Client
	ttl    time.Duration
	log    *slog.Logger
}

// New returns a PlaceCache that expires entries after ttl.
func New(client Client, ttl time.Duration, log *slog.Logger) *PlaceCache {
	return &PlaceCache{client: client, ttl: ttl, log: log}
}

// Open connects to Redis. It returns nil when addr is empty, meaning caching is disabled.
func Open(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Key returns the Redis key used for query.
func Key(query string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached place for query or ErrCacheMiss.
func (c *PlaceCache) Get(ctx context.Context, query string) (*models.Place, error) {
	raw, err := c.client.Get(ctx, Key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached place: %w", err)
	}

	var place models.Place
	if err = json.Unmarshal(raw, &place); err != nil {
		return nil, fmt.Errorf("failed to decode cached place: %w", err)
	}

	c.log.DebugContext(ctx, "Place served from cache", "query", query)

	return &place, nil
}

// Set caches place for query. The place geometry is not stored.
func (c *PlaceCache) Set(ctx context.Context, query string, place *models.Place) error {
	raw, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("failed to encode place: %w", err)
	}

	if err = c.client.Set(ctx, Key(query), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache place: %w", err)
	}

	return nil
}
