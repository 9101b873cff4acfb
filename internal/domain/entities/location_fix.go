package entities

import "time"

// LocationFix represents a single GPS sample reported by a client device.
// Fixes are immutable once stored; they are only removed by session or
// account deletion, which cascades to the attached radio sightings.
type LocationFix struct {
	ID                string           `json:"id" db:"id"`
	UserID            string           `json:"user_id" db:"user_id"`
	DeviceID          *string          `json:"device_id,omitempty" db:"device_id"`
	TrackingSessionID *string          `json:"tracking_session_id,omitempty" db:"tracking_session_id"`
	Latitude          float64          `json:"latitude" db:"latitude"`
	Longitude         float64          `json:"longitude" db:"longitude"`
	Accuracy          *float64         `json:"accuracy,omitempty" db:"accuracy"`
	Altitude          *float64         `json:"altitude,omitempty" db:"altitude"`
	Speed             *float64         `json:"speed,omitempty" db:"speed"`
	Timestamp         time.Time        `json:"timestamp" db:"timestamp"`
	Sightings         []*RadioSighting `json:"sightings,omitempty" db:"-"`
}

// DeviceKind distinguishes the two radio families a sighting can belong to.
type DeviceKind string

const (
	DeviceKindWifi DeviceKind = "wifi"
	DeviceKindBle  DeviceKind = "ble"
)

// Valid reports whether the kind is one of the two supported radio families.
func (k DeviceKind) Valid() bool {
	return k == DeviceKindWifi || k == DeviceKindBle
}

// RadioSighting is one observation of a nearby Wi-Fi access point or BLE
// device, always owned by exactly one LocationFix. The identifier is the
// BSSID for Wi-Fi and the hardware address for BLE.
type RadioSighting struct {
	ID          string     `json:"id" db:"id"`
	LocationID  string     `json:"location_id" db:"location_id"`
	Kind        DeviceKind `json:"kind" db:"kind"`
	Identifier  string     `json:"identifier" db:"identifier"`
	DisplayName string     `json:"display_name,omitempty" db:"display_name"`
	RSSI        int        `json:"rssi" db:"rssi"`
	Frequency   *int       `json:"frequency,omitempty" db:"frequency"`
}
