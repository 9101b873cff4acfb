package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/safetrail/server/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// respondWithAppError maps an application error to its HTTP status. Internal
// details never leak to the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	message := "internal server error"
	if status != http.StatusInternalServerError {
		if appErr, ok := err.(*apperrors.AppError); ok {
			message = appErr.Message
		}
	}
	respondWithError(w, status, message)
}

// requireUserID extracts the authenticated user from the request. The user
// identity is resolved upstream by the API gateway and forwarded as a header.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "missing user identity")
		return "", false
	}
	return userID, true
}

// parseTimeParam parses an RFC 3339 query parameter, returning fallback when
// the parameter is absent.
func parseTimeParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, raw)
}
