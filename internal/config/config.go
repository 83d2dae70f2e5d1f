package config

import (
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends for resolved elevations.
const (
	CacheMemory   = "memory"
	CachePostgres = "postgres"
	CacheValkey   = "valkey"
)

// Config holds the configuration settings for the route planner service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP API, health and metrics server.
// - Routing: The routing provider used when snapping to paths.
// - Elevation: The elevation provider used for elevation gain.
// - APIKey: The API key for Google providers.
// - RateLimit: Requests per second allowed against each provider.
// - HTTPTimeout: Timeout of a single provider request.
// - CacheBackend: Where resolved elevations are kept (memory, postgres, valkey).
// - ValkeyAddr: Address of the Valkey server for the valkey backend.
// - DefaultLocation: Map centre served to clients without geolocation.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env             string
	Port            int
	Routing         ProviderConfig
	Elevation       ProviderConfig
	APIKey          string
	RateLimit       int
	HTTPTimeout     time.Duration
	CacheBackend    string
	ValkeyAddr      string
	DefaultLocation Location
	Database        PostgresConfig
}

// ProviderConfig selects a provider implementation and where to reach it.
type ProviderConfig struct {
	Type    string // Type is the provider name, e.g. osrm, google, open-meteo.
	BaseURL string // BaseURL overrides the provider's public endpoint.
	Profile string // Profile is the routing profile (osrm only).
}

// Location is a latitude/longitude pair in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads .env (if present) and RUNCRAFT_* environment variables and returns a Config.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RUNCRAFT")
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("routing_provider", "osrm")
	v.SetDefault("routing_url", "")
	v.SetDefault("routing_profile", "foot")
	v.SetDefault("elevation_provider", "open-meteo")
	v.SetDefault("elevation_url", "")
	v.SetDefault("provider_key", "")
	v.SetDefault("rate_limit", "10")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("cache_backend", CacheMemory)
	v.SetDefault("valkey_addr", "localhost:6379")
	v.SetDefault("default_lat", "49.2827")
	v.SetDefault("default_lng", "-123.1207")

	// Database settings keep their unprefixed names.
	for key, env := range map[string]string{
		"db_host":     "DB_HOST",
		"db_port":     "DB_PORT",
		"db_username": "DB_USERNAME",
		"db_password": "DB_PASSWORD",
		"db_name":     "DB_NAME",
	} {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault("db_port", "5432")

	port, err := strconv.Atoi(v.GetString("port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	rateLimit, err := strconv.Atoi(v.GetString("rate_limit"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	timeout, err := time.ParseDuration(v.GetString("http_timeout"))
	if err != nil {
		panic("failed to parse http timeout from configuration")
	}

	lat, err := strconv.ParseFloat(v.GetString("default_lat"), 64)
	if err != nil {
		panic("failed to parse default latitude from configuration")
	}

	lng, err := strconv.ParseFloat(v.GetString("default_lng"), 64)
	if err != nil {
		panic("failed to parse default longitude from configuration")
	}

	cacheBackend := v.GetString("cache_backend")
	switch cacheBackend {
	case CacheMemory, CachePostgres, CacheValkey:
	default:
		panic("unsupported cache backend in configuration, must be one of memory, postgres, valkey")
	}

	return &Config{
		Env:  v.GetString("env"),
		Port: port,
		Routing: ProviderConfig{
			Type:    v.GetString("routing_provider"),
			BaseURL: v.GetString("routing_url"),
			Profile: v.GetString("routing_profile"),
		},
		Elevation: ProviderConfig{
			Type:    v.GetString("elevation_provider"),
			BaseURL: v.GetString("elevation_url"),
		},
		APIKey:          v.GetString("provider_key"),
		RateLimit:       rateLimit,
		HTTPTimeout:     timeout,
		CacheBackend:    cacheBackend,
		ValkeyAddr:      v.GetString("valkey_addr"),
		DefaultLocation: Location{Latitude: lat, Longitude: lng},
		Database: PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_username"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}
}
