package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
)

// The device listing defaults to the most recent week of history when the
// client does not bound the range itself.
const defaultAnalyticsWindow = 7 * 24 * time.Hour

// AnalyticsHandler handles device analytics endpoints.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	overlap   *services.OverlapService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analytics *services.AnalyticsService, overlap *services.OverlapService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, overlap: overlap}
}

// GetDevices handles GET /api/analytics/devices
func (h *AnalyticsHandler) GetDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	now := time.Now()
	from, err := parseTimeParam(r, "from", now.Add(-defaultAnalyticsWindow))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid from parameter")
		return
	}
	to, err := parseTimeParam(r, "to", now)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid to parameter")
		return
	}
	if !from.Before(to) {
		respondWithError(w, http.StatusBadRequest, "from must precede to")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
	}

	scope := repositories.FixScope{
		TrackingSessionID: strings.TrimSpace(r.URL.Query().Get("session_id")),
		DeviceID:          strings.TrimSpace(r.URL.Query().Get("device_id")),
	}

	aggregates, err := h.analytics.GetSuspiciousDevices(r.Context(), userID, scope,
		repositories.TimeRange{From: from, To: to}, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"devices": aggregates,
		"from":    from,
		"to":      to,
	})
}

// GetOverlap handles GET /api/analytics/overlap?session_ids=a,b,...
func (h *AnalyticsHandler) GetOverlap(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	rawIDs := strings.TrimSpace(r.URL.Query().Get("session_ids"))
	if rawIDs == "" {
		respondWithError(w, http.StatusBadRequest, "session_ids parameter is required")
		return
	}
	var sessionIDs []string
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			sessionIDs = append(sessionIDs, id)
		}
	}
	if len(sessionIDs) < 2 {
		respondWithError(w, http.StatusBadRequest, "at least two session_ids are required")
		return
	}

	filters := services.OverlapFilters{}
	switch kind := strings.TrimSpace(r.URL.Query().Get("kind")); kind {
	case "", "all":
	case string(entities.DeviceKindWifi), string(entities.DeviceKindBle):
		deviceKind := entities.DeviceKind(kind)
		filters.Kind = &deviceKind
	default:
		respondWithError(w, http.StatusBadRequest, "kind must be all, wifi or ble")
		return
	}
	filters.HideTrusted = r.URL.Query().Get("hide_trusted") == "true"

	result, err := h.overlap.Correlate(r.Context(), userID, sessionIDs, filters)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
