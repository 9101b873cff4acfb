package repositories

import (
	"context"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
)

// FixScope restricts a fix query to a tracking session or an originating
// client device. Zero value means no restriction beyond the user.
type FixScope struct {
	TrackingSessionID string
	DeviceID          string
}

// TimeRange bounds a query. Callers must pass a bounded range so a single
// analytics request cannot scan an unbounded history.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range (inclusive bounds).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// FixRepository defines the interface for location fix persistence.
type FixRepository interface {
	// Create persists a fix together with its attached radio sightings.
	Create(ctx context.Context, fix *entities.LocationFix) error

	// FindLast returns the most recent fix for the user within the scope,
	// or nil when none exists.
	FindLast(ctx context.Context, userID string, scope FixScope) (*entities.LocationFix, error)

	// QueryFixes returns fixes for the user within the scope and range,
	// ordered by timestamp descending.
	QueryFixes(ctx context.Context, userID string, scope FixScope, timeRange TimeRange) ([]*entities.LocationFix, error)

	// QuerySightings returns the sightings owned by the given fixes,
	// optionally restricted to one device kind.
	QuerySightings(ctx context.Context, fixIDs []string, kindFilter *entities.DeviceKind) ([]*entities.RadioSighting, error)
}
