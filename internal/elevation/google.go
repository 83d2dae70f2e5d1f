package elevation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for the Google Maps Elevation API
// and a logger for logging purposes.
type GoogleProvider struct {
	client GoogleElevationClient // client is the Google Maps API client
	log    *slog.Logger          // log is the logger for logging operations
}

type GoogleElevationClient interface {
	Elevation(ctx context.Context, r *maps.ElevationRequest) ([]maps.ElevationResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleElevationClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Elevations looks up the elevation of every point with one Elevation API call.
func (gp *GoogleProvider) Elevations(ctx context.Context, points []models.Coordinates) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}

	gp.log.DebugContext(ctx, "Looking up elevations using Google Maps", "points", len(points))

	locations := make([]maps.LatLng, 0, len(points))
	for _, p := range points {
		locations = append(locations, maps.LatLng{Lat: round5(p.Latitude), Lng: round5(p.Longitude)})
	}

	results, err := gp.client.Elevation(ctx, &maps.ElevationRequest{Locations: locations})
	if err != nil {
		return nil, fmt.Errorf("failed to look up elevation: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty result list", ErrMalformedResponse)
	}

	elevations := make([]float64, 0, len(results))
	for _, r := range results {
		elevations = append(elevations, r.Elevation)
	}

	return elevations, nil
}

func round5(v float64) float64 {
	const scale = 1e5
	return math.Round(v*scale) / scale
}
