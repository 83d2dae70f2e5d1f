package elevation_test

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/UnknownOlympus/runcraft/internal/elevation"
	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type elevationFunc = func(context.Context, []models.Coordinates) ([]float64, error)

// byLatitude maps every point to an elevation proportional to its latitude offset from 49.
func byLatitude(scale float64) elevationFunc {
	return func(_ context.Context, points []models.Coordinates) ([]float64, error) {
		out := make([]float64, len(points))
		for i, p := range points {
			out[i] = (p.Latitude - 49) * scale
		}
		return out, nil
	}
}

func constant(value float64) elevationFunc {
	return func(_ context.Context, points []models.Coordinates) ([]float64, error) {
		out := make([]float64, len(points))
		for i := range out {
			out[i] = value
		}
		return out, nil
	}
}

var (
	origin = models.Coordinates{Latitude: 49.0, Longitude: -123.0}
	north  = models.Coordinates{Latitude: 49.01, Longitude: -123.0}
)

func TestResolver_Gain(t *testing.T) {
	logger := slog.Default()

	t.Run("empty path", func(t *testing.T) {
		provider := mocks.NewElevationProvider(t)
		resolver := elevation.NewResolver(logger, provider, "test", elevation.NewMemoryCache(), nil)

		assert.Zero(t, resolver.Gain(t.Context(), nil))
	})

	t.Run("flat profile", func(t *testing.T) {
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(constant(120), nil).Once()
		resolver := elevation.NewResolver(logger, provider, "test", elevation.NewMemoryCache(), nil)

		assert.Zero(t, resolver.Gain(t.Context(), []models.Coordinates{origin, north}))
	})

	t.Run("monotonic climb equals last minus first", func(t *testing.T) {
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(byLatitude(10000), nil).Once()
		resolver := elevation.NewResolver(logger, provider, "test", elevation.NewMemoryCache(), nil)

		assert.InDelta(t, 100.0, resolver.Gain(t.Context(), []models.Coordinates{origin, north}), 1e-6)
	})

	t.Run("descents do not subtract and repeated points are fetched once", func(t *testing.T) {
		var requested int
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(
			func(ctx context.Context, points []models.Coordinates) ([]float64, error) {
				requested = len(points)
				return byLatitude(10000)(ctx, points)
			}, nil).Once()
		resolver := elevation.NewResolver(logger, provider, "test", elevation.NewMemoryCache(), nil)

		gain := resolver.Gain(t.Context(), []models.Coordinates{origin, north, origin})

		assert.InDelta(t, 100.0, gain, 1e-6)
		assert.Len(t, geo.DensifyPath([]models.Coordinates{origin, north}), requested)
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		cache := elevation.NewMemoryCache()
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(byLatitude(10000), nil).Once()
		resolver := elevation.NewResolver(logger, provider, "test", cache, nil)
		path := []models.Coordinates{origin, north}

		first := resolver.Gain(t.Context(), path)
		second := resolver.Gain(t.Context(), path)

		assert.InDelta(t, first, second, 1e-9)
		assert.Equal(t, len(geo.DensifyPath(path)), cache.Len())
	})

	t.Run("provider error reports zero and caches nothing", func(t *testing.T) {
		cache := elevation.NewMemoryCache()
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
		resolver := elevation.NewResolver(logger, provider, "test", cache, nil)

		assert.Zero(t, resolver.Gain(t.Context(), []models.Coordinates{origin, north}))
		assert.Zero(t, cache.Len())
	})

	t.Run("malformed chunk leaves its points unresolved", func(t *testing.T) {
		path := []models.Coordinates{origin, {Latitude: 49.1, Longitude: -123.0}}
		dense := geo.DensifyPath(path)
		require.Greater(t, len(dense), elevation.MaxBatchSize)
		require.LessOrEqual(t, len(dense), elevation.MaxFetchPoints)

		cache := elevation.NewMemoryCache()
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(
			func(ctx context.Context, points []models.Coordinates) ([]float64, error) {
				if len(points) == elevation.MaxBatchSize {
					return nil, elevation.ErrMalformedResponse
				}
				return byLatitude(1000)(ctx, points)
			}, nil).Twice()
		resolver := elevation.NewResolver(logger, provider, "test", cache, nil)

		gain := resolver.Gain(t.Context(), path)

		assert.Equal(t, len(dense)-elevation.MaxBatchSize, cache.Len())
		expected := (dense[len(dense)-1].Latitude - dense[elevation.MaxBatchSize].Latitude) * 1000
		assert.InDelta(t, expected, gain, 1e-6)
	})

	t.Run("short response resolves only the returned prefix", func(t *testing.T) {
		cache := elevation.NewMemoryCache()
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return([]float64{5, 8}, nil).Once()
		resolver := elevation.NewResolver(logger, provider, "test", cache, nil)

		gain := resolver.Gain(t.Context(), []models.Coordinates{origin, north})

		assert.InDelta(t, 3.0, gain, 1e-9)
		assert.Equal(t, 2, cache.Len())
	})

	t.Run("long path is subsampled and fetched in chunks", func(t *testing.T) {
		path := []models.Coordinates{origin, {Latitude: 49.5, Longitude: -123.0}}
		dense := geo.DensifyPath(path)
		step := int(math.Ceil(float64(len(dense)) / elevation.MaxFetchPoints))
		want := (len(dense) + step - 1) / step

		var (
			mu    sync.Mutex
			sizes []int
		)
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(
			func(ctx context.Context, points []models.Coordinates) ([]float64, error) {
				mu.Lock()
				sizes = append(sizes, len(points))
				mu.Unlock()
				return byLatitude(100)(ctx, points)
			}, nil)
		cache := elevation.NewMemoryCache()
		resolver := elevation.NewResolver(logger, provider, "test", cache, nil)

		gain := resolver.Gain(t.Context(), path)

		total := 0
		for _, size := range sizes {
			assert.LessOrEqual(t, size, elevation.MaxBatchSize)
			total += size
		}
		assert.Equal(t, want, total)
		assert.Len(t, sizes, (want+elevation.MaxBatchSize-1)/elevation.MaxBatchSize)
		assert.Equal(t, want, cache.Len())
		assert.InDelta(t, (dense[(want-1)*step].Latitude-49)*100, gain, 1e-6)
	})

	t.Run("records cache and provider metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewMetrics(reg)
		provider := mocks.NewElevationProvider(t)
		provider.On("Elevations", mock.Anything, mock.Anything).Return(constant(10), nil).Once()
		resolver := elevation.NewResolver(logger, provider, "open-meteo", elevation.NewMemoryCache(), m)
		path := []models.Coordinates{origin, north}
		n := float64(len(geo.DensifyPath(path)))

		resolver.Gain(t.Context(), path)
		resolver.Gain(t.Context(), path)

		assert.InDelta(t, n, testutil.ToFloat64(m.ElevationCache.WithLabelValues("hit")), 1e-9)
		assert.InDelta(t, n, testutil.ToFloat64(m.ElevationCache.WithLabelValues("miss")), 1e-9)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("open-meteo")), 1e-9)
	})
}

func TestSubsample(t *testing.T) {
	points := make([]models.Coordinates, 10)
	for i := range points {
		points[i] = models.Coordinates{Latitude: float64(i)}
	}

	t.Run("under the limit returns input", func(t *testing.T) {
		assert.Equal(t, points, elevation.Subsample(points, 10))
	})

	t.Run("keeps every step-th point", func(t *testing.T) {
		sampled := elevation.Subsample(points, 4)

		lats := make([]float64, 0, len(sampled))
		for _, p := range sampled {
			lats = append(lats, p.Latitude)
		}
		assert.Equal(t, []float64{0, 3, 6, 9}, lats)
	})
}

func TestChunk(t *testing.T) {
	points := make([]models.Coordinates, 250)

	chunks := elevation.Chunk(points, 100)

	sizes := make([]int, 0, len(chunks))
	for _, c := range chunks {
		sizes = append(sizes, len(c))
	}
	sort.Ints(sizes)
	assert.Equal(t, []int{50, 100, 100}, sizes)
	assert.Empty(t, elevation.Chunk(nil, 100))
}
