package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/entities"
)

// SessionHandler handles tracking session endpoints.
type SessionHandler struct {
	sessions *services.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type createSessionRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, strings.TrimSpace(payload.Name))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		offset = parsed
	}

	sessions, err := h.sessions.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	session, err := h.sessions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// Stop handles POST /api/sessions/{id}/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	session, err := h.sessions.Stop(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

type updateSessionRequest struct {
	Name    *string `json:"name"`
	Quality *string `json:"quality"`
}

// Update handles PATCH /api/sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var payload updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Name == nil && payload.Quality == nil {
		respondWithError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	id := r.PathValue("id")
	if payload.Name != nil {
		if err := h.sessions.Rename(r.Context(), userID, id, strings.TrimSpace(*payload.Name)); err != nil {
			respondWithAppError(w, err)
			return
		}
	}
	if payload.Quality != nil {
		quality := entities.SessionQuality(strings.ToUpper(strings.TrimSpace(*payload.Quality)))
		if err := h.sessions.SetQuality(r.Context(), userID, id, quality); err != nil {
			respondWithAppError(w, err)
			return
		}
	}

	session, err := h.sessions.Get(r.Context(), userID, id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// Delete handles DELETE /api/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
