package entities

import (
	"fmt"
	"time"
)

// SessionQuality is the user-assigned rating of a tracking session.
type SessionQuality string

const (
	SessionQualityGood    SessionQuality = "GOOD"
	SessionQualityRegular SessionQuality = "REGULAR"
	SessionQualityBad     SessionQuality = "BAD"
)

// TrackingSession groups the location fixes recorded between a start and
// stop of live tracking.
type TrackingSession struct {
	ID             string          `json:"id" db:"id"`
	UserID         string          `json:"user_id" db:"user_id"`
	Name           string          `json:"name,omitempty" db:"name"`
	StartTime      time.Time       `json:"start_time" db:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty" db:"end_time"`
	Quality        *SessionQuality `json:"quality,omitempty" db:"quality"`
	LastActivityAt time.Time       `json:"last_activity_at" db:"last_activity_at"`
}

// Label returns the user-visible session label, falling back to a
// synthesized one for unnamed sessions.
func (s *TrackingSession) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("Session – %s", s.StartTime.Format("Jan 2 15:04"))
}

// ClientDevice is a registered client (phone) that reports fixes. Only its
// liveness timestamp is maintained by the ingestion path.
type ClientDevice struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	Name       string    `json:"name,omitempty" db:"name"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}
