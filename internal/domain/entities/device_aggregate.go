package entities

import "time"

// DeviceAggregate is the per-device summary computed over a user's sighting
// history. It is derived on every analytics request and never persisted.
// Invariant: DistinctLocationCount <= TotalSightings.
type DeviceAggregate struct {
	Kind                  DeviceKind `json:"kind"`
	Identifier            string     `json:"identifier"`
	DisplayName           string     `json:"display_name,omitempty"`
	TotalSightings        int        `json:"total_sightings"`
	DistinctLocationCount int        `json:"distinct_location_count"`
	FirstSeenAt           time.Time  `json:"first_seen_at"`
	LastSeenAt            time.Time  `json:"last_seen_at"`
	SuspicionScore        float64    `json:"suspicion_score"`
	IsSuspicious          bool       `json:"is_suspicious"`
	SeenNearAlert         bool       `json:"seen_near_alert"`
	IsTrusted             bool       `json:"is_trusted"`
	TrustedSourceLabel    string     `json:"trusted_source_label,omitempty"`
	AvgDistanceMeters     *float64   `json:"avg_distance_meters,omitempty"`
	MinDistanceMeters     *float64   `json:"min_distance_meters,omitempty"`
}

// OverlapDevice is a device seen across one or more selected tracking
// sessions, with the per-session sighting breakdown retained.
// Invariant: SessionCount == len(PerSessionCounts) and SessionCount >= 1.
type OverlapDevice struct {
	Kind             DeviceKind        `json:"kind"`
	Identifier       string            `json:"identifier"`
	DisplayName      string            `json:"display_name,omitempty"`
	TotalCount       int               `json:"total_count"`
	SessionCount     int               `json:"session_count"`
	PerSessionCounts map[string]int    `json:"per_session_counts"`
	SessionLabels    map[string]string `json:"session_labels"`
	IsTrusted        bool              `json:"is_trusted"`
}

// IngestResult summarizes a single or batch ingestion call.
type IngestResult struct {
	Inserted int            `json:"inserted"`
	Skipped  int            `json:"skipped"`
	Errored  int            `json:"errored"`
	Reasons  map[string]int `json:"reasons,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// Skip reasons reported by the ingestion filter.
const (
	SkipReasonInvalidCoordinates     = "invalid_coordinates"
	SkipReasonLowGPSAccuracy         = "low_gps_accuracy"
	SkipReasonMovementBelowThreshold = "movement_below_threshold"
)
