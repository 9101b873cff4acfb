package entities

import "time"

// AlertStatus tracks the lifecycle of an emergency alert.
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "ACTIVE"
	AlertStatusResolved AlertStatus = "RESOLVED"
)

// Alert is an emergency alert raised by a user. The analytics core reads
// alerts only to flag device sightings that happened close in time to one.
type Alert struct {
	ID         string      `json:"id" db:"id"`
	UserID     string      `json:"user_id" db:"user_id"`
	Message    string      `json:"message,omitempty" db:"message"`
	Latitude   *float64    `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64    `json:"longitude,omitempty" db:"longitude"`
	Status     AlertStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
}

// AlertEvent is published on the event bus when an alert changes state.
type AlertEvent struct {
	ID        string      `json:"id"`
	AlertID   string      `json:"alert_id"`
	UserID    string      `json:"user_id"`
	Type      string      `json:"type"`
	Status    AlertStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}
