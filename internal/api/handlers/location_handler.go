package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/safetrail/server/internal/application/services"
	"github.com/safetrail/server/internal/domain/entities"
)

// LocationHandler handles location fix ingestion.
type LocationHandler struct {
	ingestion *services.IngestionService
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(ingestion *services.IngestionService) *LocationHandler {
	return &LocationHandler{ingestion: ingestion}
}

// fixRequest is the wire form of an incoming fix. Deployed client versions
// disagree on field names, so the alternates are normalized here and the
// core only ever sees the canonical form.
type fixRequest struct {
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	Accuracy          *float64          `json:"accuracy"`
	Altitude          *float64          `json:"altitude"`
	Speed             *float64          `json:"speed"`
	Timestamp         *time.Time        `json:"timestamp"`
	DeviceID          string            `json:"device_id"`
	TrackingSessionID string            `json:"tracking_session_id"`
	Sightings         []sightingRequest `json:"sightings"`
}

func (f *fixRequest) UnmarshalJSON(data []byte) error {
	type alias fixRequest
	aux := struct {
		*alias
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Lon       *float64 `json:"lon"`
		SessionID string   `json:"session_id"`
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Lat != nil {
		f.Latitude = *aux.Lat
	}
	if aux.Lng != nil {
		f.Longitude = *aux.Lng
	} else if aux.Lon != nil {
		f.Longitude = *aux.Lon
	}
	if f.TrackingSessionID == "" {
		f.TrackingSessionID = aux.SessionID
	}
	return nil
}

type sightingRequest struct {
	Kind        string `json:"kind"`
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
	RSSI        int    `json:"rssi"`
	Frequency   *int   `json:"frequency"`
}

func (f fixRequest) toRaw(userID string) services.RawFix {
	raw := services.RawFix{
		UserID:            userID,
		DeviceID:          f.DeviceID,
		TrackingSessionID: f.TrackingSessionID,
		Latitude:          f.Latitude,
		Longitude:         f.Longitude,
		Accuracy:          f.Accuracy,
		Altitude:          f.Altitude,
		Speed:             f.Speed,
	}
	if f.Timestamp != nil {
		raw.Timestamp = *f.Timestamp
	}
	for _, s := range f.Sightings {
		raw.Sightings = append(raw.Sightings, services.RawSighting{
			Kind:        entities.DeviceKind(s.Kind),
			Identifier:  s.Identifier,
			DisplayName: s.DisplayName,
			RSSI:        s.RSSI,
			Frequency:   s.Frequency,
		})
	}
	return raw
}

// batchRequest accepts either a bare array of fixes or an object wrapping
// one under "locations".
type batchRequest struct {
	Locations []fixRequest `json:"locations"`
}

// Ingest handles POST /api/locations
func (h *LocationHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	fixes, err := decodeFixes(body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(fixes) == 0 {
		respondWithError(w, http.StatusBadRequest, "no locations provided")
		return
	}

	if len(fixes) == 1 {
		outcome, err := h.ingestion.Ingest(r.Context(), fixes[0].toRaw(userID))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		status := http.StatusCreated
		if !outcome.Accepted {
			status = http.StatusOK
		}
		respondWithJSON(w, status, outcome)
		return
	}

	raws := make([]services.RawFix, 0, len(fixes))
	for _, fix := range fixes {
		raws = append(raws, fix.toRaw(userID))
	}

	result, err := h.ingestion.IngestBatch(r.Context(), raws)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func decodeFixes(body json.RawMessage) ([]fixRequest, error) {
	trimmed := firstNonSpace(body)
	switch trimmed {
	case '[':
		var fixes []fixRequest
		if err := json.Unmarshal(body, &fixes); err != nil {
			return nil, err
		}
		return fixes, nil
	default:
		var wrapper batchRequest
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, err
		}
		if wrapper.Locations != nil {
			return wrapper.Locations, nil
		}
		var single fixRequest
		if err := json.Unmarshal(body, &single); err != nil {
			return nil, err
		}
		return []fixRequest{single}, nil
	}
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
