package elevation_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/elevation"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create Open-Meteo provider successfully", func(t *testing.T) {
		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:      elevation.ProviderTypeOpenMeteo,
			RateLimit: 10,
			Logger:    logger,
		})

		require.NoError(t, err)
		_, ok := provider.(*elevation.OpenMeteoProvider)
		assert.True(t, ok, "expected provider to be *OpenMeteoProvider")
	})

	t.Run("create Open-Meteo provider without rate limit", func(t *testing.T) {
		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:   elevation.ProviderTypeOpenMeteo,
			Logger: logger,
		})

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("create Google provider successfully", func(t *testing.T) {
		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:      elevation.ProviderTypeGoogle,
			APIKey:    "test-api-key",
			RateLimit: 10,
			Logger:    logger,
		})

		require.NoError(t, err)
		_, ok := provider.(*elevation.GoogleProvider)
		assert.True(t, ok, "expected provider to be *GoogleProvider")
	})

	t.Run("Google provider without API key", func(t *testing.T) {
		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:   elevation.ProviderTypeGoogle,
			Logger: logger,
		})

		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("Google provider applies the HTTP timeout", func(t *testing.T) {
		var hits atomic.Int32
		srv := stalledServer(t, &hits)

		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:    elevation.ProviderTypeGoogle,
			APIKey:  "test-api-key",
			BaseURL: srv.URL,
			Timeout: 50 * time.Millisecond,
			Logger:  logger,
		})
		require.NoError(t, err)

		started := time.Now()
		_, err = provider.Elevations(t.Context(), []models.Coordinates{{Latitude: 49.0, Longitude: -123.0}})

		require.Error(t, err)
		assert.Less(t, time.Since(started), 2*time.Second)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		provider, err := elevation.NewProvider(elevation.ProviderConfig{
			Type:   "srtm",
			Logger: logger,
		})

		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported elevation provider type: srtm")
	})
}

// stalledServer accepts requests and never answers until the test ends.
func stalledServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	return srv
}
