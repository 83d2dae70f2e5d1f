package elevation_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/runcraft/internal/elevation"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(_ *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
		}, nil
	}
}

func TestOpenMeteoProvider_Elevations(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()
	limiter := rate.NewLimiter(rate.Inf, 0)
	points := []models.Coordinates{
		{Latitude: 49.0000012, Longitude: -123.0000049},
		{Latitude: 49.001, Longitude: -123.0},
	}

	t.Run("successful lookup", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "api.open-meteo.com", req.URL.Host)
				assert.Equal(t, "/v1/elevation", req.URL.Path)
				assert.Equal(t, "49.00000,49.00100", req.URL.Query().Get("latitude"))
				assert.Equal(t, "-123.00000,-123.00000", req.URL.Query().Get("longitude"))
				return respond(http.StatusOK, `{"elevation":[12.0,15.5]}`)(req)
			},
		}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		elevations, err := provider.Elevations(ctx, points)

		require.NoError(t, err)
		assert.Equal(t, []float64{12.0, 15.5}, elevations)
	})

	t.Run("custom base url", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "elevation.local:8080", req.URL.Host)
				return respond(http.StatusOK, `{"elevation":[1,2]}`)(req)
			},
		}
		provider := elevation.NewOpenMeteoProviderWithClient(
			mockClient, "http://elevation.local:8080/v1/elevation", limiter, logger,
		)

		_, err := provider.Elevations(ctx, points)

		require.NoError(t, err)
	})

	t.Run("empty input skips the request", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("unexpected request")
				return nil, nil
			},
		}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		elevations, err := provider.Elevations(ctx, nil)

		require.NoError(t, err)
		assert.Nil(t, elevations)
	})

	t.Run("batch too large", func(t *testing.T) {
		provider := elevation.NewOpenMeteoProviderWithClient(&mockHTTPClient{}, "", limiter, logger)

		_, err := provider.Elevations(ctx, make([]models.Coordinates, elevation.MaxBatchSize+1))

		require.Error(t, err)
	})

	t.Run("missing elevation field", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `{"reason":"nope"}`)}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		_, err := provider.Elevations(ctx, points)

		require.ErrorIs(t, err, elevation.ErrMalformedResponse)
	})

	t.Run("invalid json", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusOK, `{not json`)}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		_, err := provider.Elevations(ctx, points)

		require.ErrorIs(t, err, elevation.ErrMalformedResponse)
	})

	t.Run("non-200 status", func(t *testing.T) {
		mockClient := &mockHTTPClient{doFunc: respond(http.StatusTooManyRequests, `{"reason":"limit"}`)}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		_, err := provider.Elevations(ctx, points)

		require.Error(t, err)
		assert.NotErrorIs(t, err, elevation.ErrMalformedResponse)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("http client error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}
		provider := elevation.NewOpenMeteoProviderWithClient(mockClient, "", limiter, logger)

		_, err := provider.Elevations(ctx, points)

		require.ErrorIs(t, err, assert.AnError)
	})
}
