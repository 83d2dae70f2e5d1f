package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of routing provider.
type ProviderType string

const (
	// ProviderTypeOSRM represents an OSRM route service (public or self-hosted).
	ProviderTypeOSRM ProviderType = "osrm"
	// ProviderTypeGoogle represents the Google Maps Directions API.
	ProviderTypeGoogle ProviderType = "google"
)

// ProviderConfig holds configuration for creating a routing provider.
type ProviderConfig struct {
	Type      ProviderType  // Type of provider to create
	APIKey    string        // API key (used by Google provider)
	BaseURL   string        // Base URL (overrides the provider's public endpoint)
	Profile   string        // Routing profile (used by OSRM provider)
	RateLimit int           // Rate limit for requests per second
	Timeout   time.Duration // HTTP timeout of a single provider request
	Logger    *slog.Logger  // Logger for the provider
}

// NewProvider creates a routing provider based on the provided configuration.
//
// Supported provider types:
// - "osrm": OSRM route service (free, no API key required)
// - "google": Google Maps Directions API (requires API key)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeOSRM:
		return newOSRMProvider(config)
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported routing provider type: %s", config.Type)
	}
}

func newOSRMProvider(config ProviderConfig) (Provider, error) {
	const (
		defaultRateLimit = 5
		defaultTimeout   = 10 * time.Second
	)

	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
		config.Logger.Warn("Rate limit for OSRM not set, set a default value", "value", config.RateLimit)
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return NewOSRMProvider(config.BaseURL, config.Profile, config.RateLimit, config.Timeout, config.Logger), nil
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	const defaultTimeout = 10 * time.Second

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	}
	if config.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(config.BaseURL))
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
