package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/runcraft/internal/config"
	"github.com/UnknownOlympus/runcraft/internal/elevation"
	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/planner"
	"github.com/UnknownOlympus/runcraft/internal/reconciler"
	"github.com/UnknownOlympus/runcraft/internal/repository"
	"github.com/UnknownOlympus/runcraft/internal/routing"
	"github.com/UnknownOlympus/runcraft/internal/segment"
	"github.com/UnknownOlympus/runcraft/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Pick where resolved elevations are kept.
	cache, checks, closeCache := setupCache(ctx, cfg, logger)
	defer closeCache()

	routeProvider, err := routing.NewProvider(routing.ProviderConfig{
		Type:      routing.ProviderType(cfg.Routing.Type),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.Routing.BaseURL,
		Profile:   cfg.Routing.Profile,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.HTTPTimeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create routing provider: %v", err)
	}

	elevationProvider, err := elevation.NewProvider(elevation.ProviderConfig{
		Type:      elevation.ProviderType(cfg.Elevation.Type),
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.Elevation.BaseURL,
		RateLimit: cfg.RateLimit,
		Timeout:   cfg.HTTPTimeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create elevation provider: %v", err)
	}

	logger.InfoContext(ctx, "Providers initialized",
		"routing", cfg.Routing.Type, "elevation", cfg.Elevation.Type, "cache", cfg.CacheBackend)

	elevationResolver := elevation.NewResolver(logger, elevationProvider, cfg.Elevation.Type, cache, appMetrics)
	segmentResolver := segment.NewResolver(logger, routeProvider, cfg.Routing.Type, elevationResolver, appMetrics)

	// Snapping to paths is on until the runner turns it off.
	rec := reconciler.New(logger, segmentResolver, true, appMetrics)
	plan := planner.New(logger, rec)

	location := models.Coordinates{
		Latitude:  cfg.DefaultLocation.Latitude,
		Longitude: cfg.DefaultLocation.Longitude,
	}
	srv := server.New(logger, plan, location, reg, checks...)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = srv.Run(ctx, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "HTTP server stopped with error", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupCache builds the elevation cache for the configured backend, the health checks for it,
// and a function releasing its connections.
func setupCache(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (elevation.Cache, []server.HealthCheck, func()) {
	switch cfg.CacheBackend {
	case config.CachePostgres:
		// Initialize the database connection.
		dtb, err := repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}

		store := repository.NewElevationStore(dtb, logger)
		if err = store.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare DB schema: %v", err)
		}

		return elevation.NewTieredCache(store), []server.HealthCheck{{Name: "DB", Check: dtb.Ping}}, dtb.Close
	case config.CacheValkey:
		client, err := repository.NewValkeyClient(cfg.ValkeyAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Valkey: %v", err)
		}

		store := repository.NewValkeyStore(client, logger)

		return elevation.NewTieredCache(store), []server.HealthCheck{{Name: "Valkey", Check: store.Ping}}, store.Close
	default:
		return elevation.NewMemoryCache(), nil, func() {}
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
// Local runs get human-readable debug output; other environments log JSON.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

// dropTime removes the timestamp; the log collector stamps entries itself.
func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
