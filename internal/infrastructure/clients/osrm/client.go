package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/pkg/config"
	apperrors "github.com/safetrail/server/pkg/errors"
)

const defaultHTTPTimeout = 10 * time.Second

// Client calls the OSRM match API to snap GPS traces to the road network.
type Client struct {
	baseURL    string
	profile    string
	httpClient *http.Client
}

// NewClient creates a new OSRM client.
func NewClient(cfg *config.OSRMConfig) *Client {
	return NewClientWithHTTP(cfg, nil)
}

// NewClientWithHTTP allows overriding the HTTP client (used for tests).
func NewClientWithHTTP(cfg *config.OSRMConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		profile:    cfg.Profile,
		httpClient: httpClient,
	}
}

type matchResponse struct {
	Code      string `json:"code"`
	Matchings []struct {
		Confidence float64 `json:"confidence"`
		Geometry   struct {
			Coordinates [][]float64 `json:"coordinates"`
			Type        string      `json:"type"`
		} `json:"geometry"`
	} `json:"matchings"`
}

// Match submits the trace to OSRM and returns the best matching.
func (c *Client) Match(ctx context.Context, points []providers.TracePoint) (*providers.MatchedRoute, error) {
	if len(points) < 2 {
		return nil, apperrors.NewValidationError("at least two trace points are required")
	}

	coords := make([]string, 0, len(points))
	stamps := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("%f,%f", p.Longitude, p.Latitude))
		stamps = append(stamps, strconv.FormatInt(p.Timestamp.Unix(), 10))
	}

	url := fmt.Sprintf(
		"%s/match/v1/%s/%s?timestamps=%s&geometries=geojson&overview=full",
		c.baseURL, c.profile, strings.Join(coords, ";"), strings.Join(stamps, ";"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build OSRM request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("OSRM request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to read OSRM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("OSRM returned status %d", resp.StatusCode), nil,
		)
	}

	var parsed matchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewExternalError("failed to decode OSRM response", err)
	}

	if parsed.Code != "Ok" || len(parsed.Matchings) == 0 {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("OSRM could not match trace (code %s)", parsed.Code), nil,
		)
	}

	best := parsed.Matchings[0]
	return &providers.MatchedRoute{
		Geometry:   best.Geometry.Coordinates,
		Confidence: best.Confidence,
	}, nil
}
