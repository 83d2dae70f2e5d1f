// Package geo provides the distance and sampling helpers used to build route segments.
package geo

import (
	"math"

	"github.com/UnknownOlympus/runcraft/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
	// MaxStepKm is the largest gap allowed between consecutive densified points (100 meters).
	MaxStepKm = 0.1
)

// Distance returns the great-circle distance between two points in kilometers using the haversine formula.
func Distance(p1, p2 models.Coordinates) float64 {
	dLat := toRad(p2.Latitude - p1.Latitude)
	dLon := toRad(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Latitude))*math.Cos(toRad(p2.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Densify returns p1 followed by evenly spaced points towards p2, excluding p2 itself,
// so that no two consecutive points are further apart than MaxStepKm.
// Interpolation is linear in lat/lng space. The caller appends the final endpoint.
func Densify(p1, p2 models.Coordinates) []models.Coordinates {
	dist := Distance(p1, p2)
	if dist <= MaxStepKm {
		return []models.Coordinates{p1}
	}

	steps := int(math.Ceil(dist / MaxStepKm))
	latStep := (p2.Latitude - p1.Latitude) / float64(steps)
	lngStep := (p2.Longitude - p1.Longitude) / float64(steps)

	points := make([]models.Coordinates, 0, steps)
	points = append(points, p1)
	for j := 1; j < steps; j++ {
		points = append(points, models.Coordinates{
			Latitude:  p1.Latitude + latStep*float64(j),
			Longitude: p1.Longitude + lngStep*float64(j),
		})
	}

	return points
}

// DensifyPath densifies every consecutive pair of the path and appends its last point.
func DensifyPath(path []models.Coordinates) []models.Coordinates {
	if len(path) == 0 {
		return nil
	}

	dense := make([]models.Coordinates, 0, len(path))
	for i := 0; i < len(path)-1; i++ {
		dense = append(dense, Densify(path[i], path[i+1])...)
	}

	return append(dense, path[len(path)-1])
}

// PathLength returns the summed great-circle length of the path in kilometers.
func PathLength(path []models.Coordinates) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += Distance(path[i-1], path[i])
	}
	return total
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
