package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixRequest_FieldNormalization(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantLat float64
		wantLng float64
		wantSID string
	}{
		{
			name:    "canonical field names",
			payload: `{"latitude": 6.5, "longitude": 3.3, "tracking_session_id": "s1"}`,
			wantLat: 6.5, wantLng: 3.3, wantSID: "s1",
		},
		{
			name:    "short lat lng spelling",
			payload: `{"lat": 6.5, "lng": 3.3, "session_id": "s1"}`,
			wantLat: 6.5, wantLng: 3.3, wantSID: "s1",
		},
		{
			name:    "lon spelling",
			payload: `{"lat": 6.5, "lon": 3.3}`,
			wantLat: 6.5, wantLng: 3.3,
		},
		{
			name:    "canonical wins over alternate session field",
			payload: `{"latitude": 1, "longitude": 2, "tracking_session_id": "canonical", "session_id": "legacy"}`,
			wantLat: 1, wantLng: 2, wantSID: "canonical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fix fixRequest
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &fix))
			assert.Equal(t, tt.wantLat, fix.Latitude)
			assert.Equal(t, tt.wantLng, fix.Longitude)
			assert.Equal(t, tt.wantSID, fix.TrackingSessionID)
		})
	}
}

func TestDecodeFixes(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		fixes, err := decodeFixes([]byte(`[{"lat": 1, "lng": 2}, {"lat": 3, "lng": 4}]`))
		require.NoError(t, err)
		require.Len(t, fixes, 2)
		assert.Equal(t, 3.0, fixes[1].Latitude)
	})

	t.Run("locations wrapper", func(t *testing.T) {
		fixes, err := decodeFixes([]byte(`{"locations": [{"lat": 1, "lng": 2}]}`))
		require.NoError(t, err)
		require.Len(t, fixes, 1)
		assert.Equal(t, 1.0, fixes[0].Latitude)
	})

	t.Run("single object", func(t *testing.T) {
		fixes, err := decodeFixes([]byte(`{"latitude": 6.5, "longitude": 3.3, "sightings": [{"kind": "wifi", "identifier": "AA:BB", "rssi": -60}]}`))
		require.NoError(t, err)
		require.Len(t, fixes, 1)
		require.Len(t, fixes[0].Sightings, 1)
		assert.Equal(t, "AA:BB", fixes[0].Sightings[0].Identifier)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := decodeFixes([]byte(`[{"lat": "not a number"}]`))
		assert.Error(t, err)
	})
}

func TestFixRequest_ToRaw(t *testing.T) {
	var fix fixRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"lat": 6.5, "lng": 3.3, "accuracy": 12.5, "device_id": "phone-1",
		"sightings": [{"kind": "ble", "identifier": "11:22", "display_name": "Tag", "rssi": -72}]
	}`), &fix))

	raw := fix.toRaw("user-1")
	assert.Equal(t, "user-1", raw.UserID)
	assert.Equal(t, "phone-1", raw.DeviceID)
	assert.Equal(t, 6.5, raw.Latitude)
	require.NotNil(t, raw.Accuracy)
	assert.Equal(t, 12.5, *raw.Accuracy)
	require.Len(t, raw.Sightings, 1)
	assert.Equal(t, "Tag", raw.Sightings[0].DisplayName)
	assert.Equal(t, -72, raw.Sightings[0].RSSI)
}
