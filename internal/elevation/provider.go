package elevation

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/runcraft/internal/models"
)

// Provider is an interface that defines a method for looking up elevations.
// Elevations returns one value in meters per input point, in input order.
type Provider interface {
	Elevations(ctx context.Context, points []models.Coordinates) ([]float64, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrMalformedResponse is returned when the provider answered without a usable elevation list.
// The resolver leaves the affected points unresolved instead of failing the whole lookup.
var ErrMalformedResponse = errors.New("elevation provider returned a malformed response")

// MaxBatchSize is the largest number of points sent in one provider request.
const MaxBatchSize = 100

// formatDegrees renders a coordinate component with the 5 decimal precision used for cache keys.
func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
