package routing_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/UnknownOlympus/runcraft/internal/routing"
	"github.com/UnknownOlympus/runcraft/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleProvider_Route(t *testing.T) {
	mockClient := mocks.NewGoogleDirectionsClient(t)
	provider := routing.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()
	req := &maps.DirectionsRequest{
		Origin:      "49,-123",
		Destination: "49.001,-123",
		Mode:        maps.TravelModeWalking,
	}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("Directions", ctx, req).Return(nil, nil, assert.AnError).Once()

		route, err := provider.Route(ctx, start, end)

		require.Nil(t, route)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api returns no routes", func(t *testing.T) {
		mockClient.On("Directions", ctx, req).Return([]maps.Route{}, nil, nil).Once()

		route, err := provider.Route(ctx, start, end)

		require.Nil(t, route)
		require.ErrorIs(t, err, routing.ErrNoRoute)
		mockClient.AssertExpectations(t)
	})

	t.Run("successful routing", func(t *testing.T) {
		path := []models.Coordinates{start, {Latitude: 49.0006, Longitude: -123.0002}, end}
		response := []maps.Route{{
			OverviewPolyline: maps.Polyline{Points: geo.EncodePolyline(path)},
			Legs: []*maps.Leg{
				{Distance: maps.Distance{Meters: 90}},
				{Distance: maps.Distance{Meters: 40}},
			},
		}}
		mockClient.On("Directions", ctx, req).Return(response, nil, nil).Once()

		route, err := provider.Route(ctx, start, end)

		require.NoError(t, err)
		require.Len(t, route.Path, 3)
		assert.InDelta(t, 49.0006, route.Path[1].Latitude, 1e-6)
		assert.InDelta(t, 130.0, route.DistanceMeters, 1e-9)
		mockClient.AssertExpectations(t)
	})
}
