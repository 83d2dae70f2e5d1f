package elevation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"golang.org/x/sync/errgroup"
)

// MaxFetchPoints bounds how many uncached points a single Gain call sends to the provider.
const MaxFetchPoints = 400

// Resolver computes elevation gain along a path through a Cache backed by a Provider.
type Resolver struct {
	log          *slog.Logger
	provider     Provider
	providerName string
	cache        Cache
	metrics      *metrics.Metrics
}

// NewResolver creates a Resolver. metrics may be nil.
func NewResolver(log *slog.Logger, provider Provider, providerName string, cache Cache, m *metrics.Metrics) *Resolver {
	return &Resolver{
		log:          log,
		provider:     provider,
		providerName: providerName,
		cache:        cache,
		metrics:      m,
	}
}

// Gain returns the total climb in meters along path, densified to MaxStepKm spacing.
// Only positive deltas between consecutive resolved points count. Unresolved points are skipped.
// Gain never fails: any lookup error is logged and reported as 0.
func (r *Resolver) Gain(ctx context.Context, path []models.Coordinates) float64 {
	if len(path) == 0 {
		return 0
	}

	dense := geo.DensifyPath(path)
	keys := make([]string, len(dense))
	for i, p := range dense {
		keys[i] = p.Key()
	}

	known, err := r.resolve(ctx, dense, keys)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to resolve elevation, reporting zero gain", "points", len(dense), "error", err)
		return 0
	}

	var (
		gain     float64
		prev     float64
		havePrev bool
	)
	for _, key := range keys {
		elev, ok := known[key]
		if !ok {
			continue
		}
		if havePrev && elev > prev {
			gain += elev - prev
		}
		prev = elev
		havePrev = true
	}

	return gain
}

// resolve returns the elevation of every point it could resolve, fetching cache misses from the provider.
func (r *Resolver) resolve(ctx context.Context, dense []models.Coordinates, keys []string) (map[string]float64, error) {
	known, err := r.cache.Lookup(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached elevations: %w", err)
	}

	seen := make(map[string]struct{}, len(keys))
	var misses []models.Coordinates
	for i, key := range keys {
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		misses = append(misses, dense[i])
	}

	r.metrics.CacheLookups(len(keys)-len(misses), len(misses))

	if len(misses) == 0 {
		return known, nil
	}

	fetched, err := r.fetch(ctx, Subsample(misses, MaxFetchPoints))
	if err != nil {
		return nil, err
	}

	if len(fetched) > 0 {
		if err = r.cache.Store(ctx, fetched); err != nil {
			r.log.WarnContext(ctx, "Failed to store elevations in cache", "points", len(fetched), "error", err)
		}
		for key, v := range fetched {
			known[key] = v
		}
	}

	return known, nil
}

// fetch sends points to the provider in concurrent chunks of at most MaxBatchSize.
// A chunk with a malformed response leaves its points unresolved; any other error fails the call.
func (r *Resolver) fetch(ctx context.Context, points []models.Coordinates) (map[string]float64, error) {
	chunks := Chunk(points, MaxBatchSize)
	results := make([][]float64, len(chunks))

	group, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		group.Go(func() error {
			started := time.Now()
			elevations, err := r.provider.Elevations(gctx, chunk)
			r.metrics.ObserveRequest(r.providerName, started, err)

			if errors.Is(err, ErrMalformedResponse) {
				r.log.WarnContext(gctx, "Elevation chunk left unresolved", "size", len(chunk), "error", err)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to fetch elevation chunk %d: %w", i, err)
			}

			results[i] = elevations
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	fetched := make(map[string]float64, len(points))
	for i, chunk := range chunks {
		for j, elev := range results[i] {
			if j >= len(chunk) {
				break
			}
			fetched[chunk[j].Key()] = elev
		}
	}

	return fetched, nil
}

// Subsample keeps every step-th point, step = ceil(len/limit), so that at most limit points remain
// and the whole path stays covered.
func Subsample(points []models.Coordinates, limit int) []models.Coordinates {
	if len(points) <= limit {
		return points
	}

	step := int(math.Ceil(float64(len(points)) / float64(limit)))
	sampled := make([]models.Coordinates, 0, limit)
	for i := 0; i < len(points); i += step {
		sampled = append(sampled, points[i])
	}

	return sampled
}

// Chunk splits points into consecutive batches of at most size points.
func Chunk(points []models.Coordinates, size int) [][]models.Coordinates {
	chunks := make([][]models.Coordinates, 0, (len(points)+size-1)/size)
	for size < len(points) {
		points, chunks = points[size:], append(chunks, points[:size:size])
	}
	if len(points) > 0 {
		chunks = append(chunks, points)
	}

	return chunks
}
