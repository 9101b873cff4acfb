package providers

import (
	"context"
	"time"
)

// TracePoint is one coordinate sample submitted for map matching.
type TracePoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchedRoute is the snapped polyline returned by the matcher. Geometry is
// a GeoJSON LineString coordinate array ([lon, lat] pairs).
type MatchedRoute struct {
	Geometry   [][]float64 `json:"geometry"`
	Confidence float64     `json:"confidence"`
}

// MapMatchProvider snaps a raw GPS trace to the road network. Used only for
// route visualization, never by the scoring core.
type MapMatchProvider interface {
	// Match snaps the given trace and returns the matched route.
	Match(ctx context.Context, points []TracePoint) (*MatchedRoute, error)
}
