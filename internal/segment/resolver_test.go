package segment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/routing"
	"github.com/UnknownOlympus/runcraft/internal/segment"
	"github.com/UnknownOlympus/runcraft/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingElevation returns a fixed gain and remembers the paths it was asked about.
type recordingElevation struct {
	gain  float64
	paths [][]models.Coordinates
}

func (r *recordingElevation) Gain(_ context.Context, path []models.Coordinates) float64 {
	r.paths = append(r.paths, path)
	return r.gain
}

var (
	start = models.Coordinates{Latitude: 49.0, Longitude: -123.0}
	end   = models.Coordinates{Latitude: 49.001, Longitude: -123.0}
)

func TestResolver_Resolve(t *testing.T) {
	logger := slog.Default()
	ctx := t.Context()

	t.Run("straight line when snap is off", func(t *testing.T) {
		router := mocks.NewRoutingProvider(t)
		elev := &recordingElevation{gain: 3}
		resolver := segment.NewResolver(logger, router, "osrm", elev, nil)

		seg := resolver.Resolve(ctx, start, end, false)

		assert.Equal(t, []models.Coordinates{start, end}, seg.Path)
		assert.InDelta(t, geo.Distance(start, end), seg.Distance, 1e-12)
		assert.InDelta(t, 0.111, seg.Distance, 0.001)
		assert.InDelta(t, 3.0, seg.Elevation, 1e-12)
		assert.Equal(t, [][]models.Coordinates{{start, end}}, elev.paths)
		router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("snapped path replaces the straight line", func(t *testing.T) {
		snapped := []models.Coordinates{start, {Latitude: 49.0005, Longitude: -123.0003}, end}
		router := mocks.NewRoutingProvider(t)
		router.On("Route", ctx, start, end).
			Return(&models.Route{Path: snapped, DistanceMeters: 142.5}, nil).Once()
		elev := &recordingElevation{gain: 7}
		resolver := segment.NewResolver(logger, router, "osrm", elev, nil)

		seg := resolver.Resolve(ctx, start, end, true)

		assert.Equal(t, snapped, seg.Path)
		assert.InDelta(t, 0.1425, seg.Distance, 1e-12)
		assert.InDelta(t, 7.0, seg.Elevation, 1e-12)
		assert.Equal(t, [][]models.Coordinates{snapped}, elev.paths)
	})

	for _, routeErr := range []error{routing.ErrNoRoute, assert.AnError, fmt.Errorf("wrapped: %w", routing.ErrNoRoute)} {
		t.Run("falls back on "+routeErr.Error(), func(t *testing.T) {
			router := mocks.NewRoutingProvider(t)
			router.On("Route", ctx, start, end).Return(nil, routeErr).Once()
			elev := &recordingElevation{}
			resolver := segment.NewResolver(logger, router, "osrm", elev, nil)

			seg := resolver.Resolve(ctx, start, end, true)

			assert.Equal(t, []models.Coordinates{start, end}, seg.Path)
			assert.InDelta(t, geo.Distance(start, end), seg.Distance, 1e-12)
			assert.Equal(t, [][]models.Coordinates{{start, end}}, elev.paths)
		})
	}

	t.Run("logs the straight-line length on fallback", func(t *testing.T) {
		var buf bytes.Buffer
		router := mocks.NewRoutingProvider(t)
		router.On("Route", ctx, start, end).Return(nil, routing.ErrNoRoute).Once()
		resolver := segment.NewResolver(slog.New(slog.NewJSONHandler(&buf, nil)), router, "osrm",
			&recordingElevation{}, nil)

		resolver.Resolve(ctx, start, end, true)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Routing failed, using straight line", entry["msg"])
		assert.InDelta(t, geo.Distance(start, end), entry["straight_km"], 1e-9)
	})

	t.Run("records geometry source", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.NewMetrics(reg)
		router := mocks.NewRoutingProvider(t)
		router.On("Route", ctx, start, end).Return(nil, routing.ErrNoRoute).Once()
		router.On("Route", ctx, start, end).Return(&models.Route{Path: []models.Coordinates{start, end}}, nil).Once()
		resolver := segment.NewResolver(logger, router, "osrm", &recordingElevation{}, m)

		resolver.Resolve(ctx, start, end, true)
		resolver.Resolve(ctx, start, end, true)
		resolver.Resolve(ctx, start, end, false)

		assert.InDelta(t, 1.0, testutil.ToFloat64(m.SegmentsResolved.WithLabelValues(segment.ModeFallback)), 1e-9)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.SegmentsResolved.WithLabelValues(segment.ModeSnapped)), 1e-9)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.SegmentsResolved.WithLabelValues(segment.ModeStraight)), 1e-9)
		assert.InDelta(t, 2.0, testutil.ToFloat64(m.ProviderRequests.WithLabelValues("osrm")), 1e-9)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("osrm")), 1e-9)
	})
}
