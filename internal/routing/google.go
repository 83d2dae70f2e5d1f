package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider routes with the Google Maps Directions API in walking mode.
type GoogleProvider struct {
	client GoogleDirectionsClient // client is the Google Maps API client
	log    *slog.Logger           // log is the logger for logging operations
}

type GoogleDirectionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given Directions client and logger.
func NewGoogleProvider(client GoogleDirectionsClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Route requests walking directions between start and end. The path is the decoded
// overview polyline and the distance is the sum of all legs.
func (gp *GoogleProvider) Route(ctx context.Context, start, end models.Coordinates) (*models.Route, error) {
	gp.log.DebugContext(ctx, "Routing using Google Maps", "start", start.Key(), "end", end.Key())

	req := &maps.DirectionsRequest{
		Origin:      formatLatLng(start),
		Destination: formatLatLng(end),
		Mode:        maps.TravelModeWalking,
	}
	routes, _, err := gp.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to request directions: %w", err)
	}

	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: empty route list", ErrNoRoute)
	}

	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode overview polyline: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty geometry", ErrNoRoute)
	}

	path := make([]models.Coordinates, 0, len(points))
	for _, p := range points {
		path = append(path, models.Coordinates{Latitude: p.Lat, Longitude: p.Lng})
	}

	var meters int
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}

	return &models.Route{Path: path, DistanceMeters: float64(meters)}, nil
}

func formatLatLng(c models.Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
