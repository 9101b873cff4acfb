package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/safetrail/server/internal/domain/providers"
)

// RouteHandler handles map-matching endpoints.
type RouteHandler struct {
	matcher providers.MapMatchProvider
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(matcher providers.MapMatchProvider) *RouteHandler {
	return &RouteHandler{matcher: matcher}
}

type matchRequest struct {
	Points []matchPoint `json:"points"`
}

type matchPoint struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timestamp *time.Time `json:"timestamp"`
}

// Match handles POST /api/routes/match
func (h *RouteHandler) Match(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var payload matchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.Points) < 2 {
		respondWithError(w, http.StatusBadRequest, "at least two points are required")
		return
	}

	trace := make([]providers.TracePoint, 0, len(payload.Points))
	for _, p := range payload.Points {
		point := providers.TracePoint{Latitude: p.Latitude, Longitude: p.Longitude}
		if p.Timestamp != nil {
			point.Timestamp = *p.Timestamp
		}
		trace = append(trace, point)
	}

	route, err := h.matcher.Match(r.Context(), trace)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, route)
}
