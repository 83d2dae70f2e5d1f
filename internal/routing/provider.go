package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/runcraft/internal/models"
)

// Provider is an interface that defines a method for routing between two points.
// The Route method takes a context and the two endpoints, and returns the path
// a runner would follow between them or an error if no route could be produced.
type Provider interface {
	Route(ctx context.Context, start, end models.Coordinates) (*models.Route, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoRoute is returned when the provider answered but had no usable route.
var ErrNoRoute = errors.New("routing provider returned no route")
