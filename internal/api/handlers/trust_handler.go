package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/entities"
)

// TrustHandler handles trusted device endpoints.
type TrustHandler struct {
	trust *services.TrustService
}

// NewTrustHandler creates a new trust handler.
func NewTrustHandler(trust *services.TrustService) *TrustHandler {
	return &TrustHandler{trust: trust}
}

// List handles GET /api/trusted-devices
func (h *TrustHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	devices, err := h.trust.List(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"devices": devices})
}

type trustRequest struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	Trusted    bool   `json:"trusted"`
}

// Set handles PUT /api/trusted-devices
func (h *TrustHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload trustRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	kind := entities.DeviceKind(strings.ToLower(strings.TrimSpace(payload.Kind)))
	identifier := strings.TrimSpace(payload.Identifier)

	if err := h.trust.SetTrusted(r.Context(), userID, kind, identifier, payload.Trusted); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"kind":       kind,
		"identifier": identifier,
		"trusted":    payload.Trusted,
	})
}
