package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/models"
	"golang.org/x/time/rate"
)

// OpenMeteoBaseURL is the Open-Meteo elevation endpoint.
const OpenMeteoBaseURL = "https://api.open-meteo.com/v1/elevation"

// OpenMeteoProvider implements the Provider interface using the Open-Meteo elevation API.
// The API is free and accepts up to 100 coordinates per request.
type OpenMeteoProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the elevation API
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// openMeteoResponse represents the JSON response from the elevation API.
type openMeteoResponse struct {
	Elevation []float64 `json:"elevation"`
	Reason    string    `json:"reason"`
}

// NewOpenMeteoProvider creates a new Open-Meteo elevation provider.
func NewOpenMeteoProvider(baseURL string, rateLimit int, timeout time.Duration, log *slog.Logger) *OpenMeteoProvider {
	return NewOpenMeteoProviderWithClient(
		&http.Client{Timeout: timeout},
		baseURL,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewOpenMeteoProviderWithClient allows injecting custom HTTP client.
func NewOpenMeteoProviderWithClient(
	client HTTPClient,
	baseURL string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = OpenMeteoBaseURL
	}

	return &OpenMeteoProvider{
		client:  client,
		baseURL: baseURL,
		log:     log,
		limiter: limiter,
	}
}

// Elevations looks up the elevation of every point in a single request.
// Coordinates are sent rounded to 5 decimal places.
func (op *OpenMeteoProvider) Elevations(ctx context.Context, points []models.Coordinates) ([]float64, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if len(points) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d points exceeds the limit of %d", len(points), MaxBatchSize)
	}

	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	lats := make([]string, 0, len(points))
	lngs := make([]string, 0, len(points))
	for _, p := range points {
		lats = append(lats, formatDegrees(p.Latitude))
		lngs = append(lngs, formatDegrees(p.Longitude))
	}

	query := reqURL.Query()
	query.Set("latitude", strings.Join(lats, ","))
	query.Set("longitude", strings.Join(lngs, ","))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute elevation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		op.log.ErrorContext(ctx, "Open-Meteo API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("open-meteo API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result openMeteoResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if result.Elevation == nil {
		return nil, fmt.Errorf("%w: no elevation field", ErrMalformedResponse)
	}

	op.log.DebugContext(ctx, "Open-Meteo returned elevations", "requested", len(points), "received", len(result.Elevation))

	return result.Elevation, nil
}
