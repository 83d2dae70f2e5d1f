package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/runcraft/internal/geo"
	"github.com/UnknownOlympus/runcraft/internal/models"
	"golang.org/x/time/rate"
)

const (
	// OSRMBaseURL is the public OSRM instance serving the foot profile.
	OSRMBaseURL = "https://routing.openstreetmap.de/routed-foot"
	// OSRMProfile is the default OSRM routing profile.
	OSRMProfile = "foot"
	// osrmCodeOk is the status code OSRM reports for a successful query.
	osrmCodeOk = "Ok"
)

// OSRMProvider implements the Provider interface using an OSRM route service.
type OSRMProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL of the OSRM instance
	profile string        // Routing profile (foot, bike, car...)
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// osrmResponse represents the subset of the OSRM route response the planner needs.
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry string  `json:"geometry"` // Encoded polyline, precision 5
		Distance float64 `json:"distance"` // Meters
	} `json:"routes"`
}

// NewOSRMProvider creates a new OSRM routing provider.
// Empty baseURL or profile fall back to the public foot routing service.
func NewOSRMProvider(baseURL, profile string, rateLimit int, timeout time.Duration, log *slog.Logger) *OSRMProvider {
	return NewOSRMProviderWithClient(
		&http.Client{Timeout: timeout},
		baseURL,
		profile,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewOSRMProviderWithClient creates an OSRM provider with a custom HTTP client and limiter.
// Useful for testing with mocked HTTP clients.
func NewOSRMProviderWithClient(
	client HTTPClient,
	baseURL string,
	profile string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OSRMProvider {
	if baseURL == "" {
		baseURL = OSRMBaseURL
	}
	if profile == "" {
		profile = OSRMProfile
	}

	return &OSRMProvider{
		client:  client,
		baseURL: baseURL,
		profile: profile,
		log:     log,
		limiter: limiter,
	}
}

// Route queries OSRM for a path between start and end with full overview geometry.
// Any response other than code "Ok" with at least one route is reported as ErrNoRoute.
func (op *OSRMProvider) Route(ctx context.Context, start, end models.Coordinates) (*models.Route, error) {
	if err := op.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := op.buildURL(start, end)
	if err != nil {
		return nil, err
	}

	op.log.DebugContext(ctx, "OSRM request URL", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute routing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result osrmResponse
	if resp.StatusCode != http.StatusOK {
		// OSRM reports NoRoute/NoSegment with a 400 and a JSON body.
		if jsonErr := json.Unmarshal(body, &result); jsonErr == nil && result.Code != "" {
			return nil, fmt.Errorf("%w: code %s: %s", ErrNoRoute, result.Code, result.Message)
		}
		return nil, fmt.Errorf("osrm API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode osrm response: %w", err)
	}

	if result.Code != osrmCodeOk {
		return nil, fmt.Errorf("%w: code %s", ErrNoRoute, result.Code)
	}
	if len(result.Routes) == 0 {
		return nil, fmt.Errorf("%w: empty route list", ErrNoRoute)
	}

	path, err := geo.DecodePolyline(result.Routes[0].Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode osrm geometry: %w", err)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty geometry", ErrNoRoute)
	}

	op.log.DebugContext(ctx, "OSRM found route", "points", len(path), "meters", result.Routes[0].Distance)

	return &models.Route{Path: path, DistanceMeters: result.Routes[0].Distance}, nil
}

func (op *OSRMProvider) buildURL(start, end models.Coordinates) (string, error) {
	coords := formatLngLat(start) + ";" + formatLngLat(end)

	reqURL, err := url.Parse(fmt.Sprintf("%s/route/v1/%s/%s", op.baseURL, op.profile, coords))
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("overview", "full")
	query.Set("geometries", "polyline")
	query.Set("continue_straight", "false")
	reqURL.RawQuery = query.Encode()

	return reqURL.String(), nil
}

// formatLngLat renders a point in the lng,lat order OSRM expects.
func formatLngLat(c models.Coordinates) string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}
