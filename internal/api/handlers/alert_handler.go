package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/repositories"
)

const defaultAlertWindow = 30 * 24 * time.Hour

// AlertHandler handles emergency alert endpoints.
type AlertHandler struct {
	alerts *services.AlertService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *services.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

type createAlertRequest struct {
	Message   string   `json:"message"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Create handles POST /api/alerts
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if (payload.Latitude == nil) != (payload.Longitude == nil) {
		respondWithError(w, http.StatusBadRequest, "latitude and longitude must be provided together")
		return
	}

	alert, err := h.alerts.Create(r.Context(), userID, strings.TrimSpace(payload.Message),
		payload.Latitude, payload.Longitude)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, alert)
}

// List handles GET /api/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	now := time.Now()
	from, err := parseTimeParam(r, "from", now.Add(-defaultAlertWindow))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid from parameter")
		return
	}
	to, err := parseTimeParam(r, "to", now)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid to parameter")
		return
	}

	direction := repositories.AlertDirectionSent
	if raw := r.URL.Query().Get("direction"); raw == string(repositories.AlertDirectionReceived) {
		direction = repositories.AlertDirectionReceived
	}

	alerts, err := h.alerts.List(r.Context(), userID, repositories.TimeRange{From: from, To: to}, direction)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// Resolve handles POST /api/alerts/{id}/resolve
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.alerts.Resolve(r.Context(), userID, r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}
