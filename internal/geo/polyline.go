package geo

import (
	"fmt"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes the path with the Google polyline algorithm at precision 5.
func EncodePolyline(path []models.Coordinates) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Latitude, p.Longitude})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes a precision 5 Google polyline into a path.
func DecodePolyline(encoded string) ([]models.Coordinates, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	path := make([]models.Coordinates, 0, len(coords))
	for _, c := range coords {
		path = append(path, models.Coordinates{Latitude: c[0], Longitude: c[1]})
	}

	return path, nil
}
