package models

// Segment is the computed path between two consecutive waypoints.
// A segment is never mutated after it is produced; recomputation replaces it.
type Segment struct {
	Path      []Coordinates `json:"path"`      // Drawn path, at least both endpoints.
	Distance  float64       `json:"distance"`  // Distance in kilometers.
	Elevation float64       `json:"elevation"` // Elevation gain in meters.
}

// Route is a path returned by a routing provider.
type Route struct {
	Path           []Coordinates // Path in walking order.
	DistanceMeters float64       // Distance reported by the provider.
}
