package mapmatch

import (
	"context"

	"github.com/safetrail/server/internal/domain/providers"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// MockProvider returns the input trace unsnapped. Used in development and
// tests when no OSRM instance is available.
type MockProvider struct{}

// NewMockProvider creates a new mock map-match provider.
func NewMockProvider() providers.MapMatchProvider {
	return &MockProvider{}
}

// Match echoes the trace back as a LineString with low confidence.
func (p *MockProvider) Match(ctx context.Context, points []providers.TracePoint) (*providers.MatchedRoute, error) {
	if len(points) < 2 {
		return nil, apperrors.NewValidationError("at least two trace points are required")
	}

	geometry := make([][]float64, 0, len(points))
	for _, pt := range points {
		geometry = append(geometry, []float64{pt.Longitude, pt.Latitude})
	}

	return &providers.MatchedRoute{
		Geometry:   geometry,
		Confidence: 0.0,
	}, nil
}
