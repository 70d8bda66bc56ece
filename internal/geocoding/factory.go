package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"googlemaps.github.io/maps"
)

// ProviderType names a geocoding backend.
type ProviderType string

const (
	// ProviderTypeGoogle is the Google Maps Geocoding API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim is the OpenStreetMap Nominatim search API, public or self-hosted.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeVisicom is the Visicom Data API.
	ProviderTypeVisicom ProviderType = "visicom"
)

// defaultVisicomRate is used when no rate limit is configured for Visicom.
const defaultVisicomRate = 5

// Factory errors.
var (
	ErrUnsupportedProvider = errors.New("unsupported provider type")
	ErrMissingAPIKey       = errors.New("API key is required")
)

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (Google and Visicom)
	BaseURL   string       // Endpoint override, e.g. a self-hosted Nominatim (Nominatim and Visicom)
	RateLimit int          // Requests per second (Google and Visicom)
	Languages []string     // Preferred result languages, tried in order (Nominatim)
	Logger    *slog.Logger // Logger for the provider
}

type builder func(config ProviderConfig) (Provider, error)

var builders = map[ProviderType]builder{
	ProviderTypeGoogle:    newGoogleProvider,
	ProviderTypeNominatim: newNominatimProvider,
	ProviderTypeVisicom:   newVisicomProvider,
}

// SupportedProviders lists the provider types NewProvider accepts, sorted by name.
func SupportedProviders() []ProviderType {
	types := make([]ProviderType, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// ParseProviderType maps a configuration value to a ProviderType, ignoring case and surrounding spaces.
func ParseProviderType(value string) (ProviderType, error) {
	t := ProviderType(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := builders[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, value)
	}

	return t, nil
}

// NewProvider creates the geocoding provider selected by config.Type.
// Google and Visicom need an API key; Nominatim works without one.
func NewProvider(config ProviderConfig) (Provider, error) {
	build, ok := builders[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Type)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return build(config)
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, ProviderTypeGoogle)
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

func newNominatimProvider(config ProviderConfig) (Provider, error) {
	np := NewNominatimProvider(config.Logger, config.Languages...)
	if config.BaseURL != "" {
		np.WithBaseURL(config.BaseURL)
		config.Logger.Info("Using custom Nominatim endpoint", "url", config.BaseURL)
	}

	return np, nil
}

func newVisicomProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w for %s provider", ErrMissingAPIKey, ProviderTypeVisicom)
	}

	if config.RateLimit <= 0 {
		config.RateLimit = defaultVisicomRate
		config.Logger.Warn("Rate limit for Visicom API not set, set a default value", "value", config.RateLimit)
	}

	vp := NewVisicomProvider(config.APIKey, config.RateLimit, config.Logger)
	if config.BaseURL != "" {
		vp.WithBaseURL(config.BaseURL)
	}

	return vp, nil
}
