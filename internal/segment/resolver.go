// Package segment resolves the path, distance and climb between two consecutive waypoints.
package segment

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/metrics"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/routing"
)

// Geometry sources reported to metrics.
const (
	ModeSnapped  = "snapped"
	ModeStraight = "straight"
	ModeFallback = "fallback"
)

// ElevationResolver reports the elevation gain along a path. *elevation.Resolver implements it.
type ElevationResolver interface {
	Gain(ctx context.Context, path []models.Coordinates) float64
}

// Resolver builds route segments from a routing provider and an elevation resolver.
type Resolver struct {
	log        *slog.Logger
	router     routing.Provider
	routerName string
	elevation  ElevationResolver
	metrics    *metrics.Metrics
}

// NewResolver creates a segment Resolver. metrics may be nil.
func NewResolver(
	log *slog.Logger,
	router routing.Provider,
	routerName string,
	elevation ElevationResolver,
	m *metrics.Metrics,
) *Resolver {
	return &Resolver{
		log:        log,
		router:     router,
		routerName: routerName,
		elevation:  elevation,
		metrics:    m,
	}
}

// Resolve returns the segment from start to end. With snap set it follows the routing provider's
// path; if routing fails for any reason the straight line is kept. Resolve never fails.
func (r *Resolver) Resolve(ctx context.Context, start, end models.Coordinates, snap bool) *models.Segment {
	path := []models.Coordinates{start, end}
	distance := geo.Distance(start, end)
	mode := ModeStraight

	if snap {
		mode = ModeFallback

		started := time.Now()
		route, err := r.router.Route(ctx, start, end)
		r.metrics.ObserveRequest(r.routerName, started, err)

		if err != nil {
			r.log.WarnContext(ctx, "Routing failed, using straight line",
				"start", start.Key(), "end", end.Key(), "straight_km", geo.PathLength(path), "error", err)
		} else {
			path = route.Path
			distance = route.DistanceMeters / 1000
			mode = ModeSnapped
		}
	}

	r.metrics.SegmentResolved(mode)

	return &models.Segment{
		Path:      path,
		Distance:  distance,
		Elevation: r.elevation.Gain(ctx, path),
	}
}
