package repositories

import (
	"context"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
)

// SessionUpdate carries the user-editable session fields. Nil fields are
// left unchanged.
type SessionUpdate struct {
	Name    *string
	Quality *entities.SessionQuality
	EndTime *time.Time
}

// SessionRepository defines the interface for tracking session persistence.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entities.TrackingSession) error

	// GetByID retrieves a session owned by the user.
	GetByID(ctx context.Context, userID, id string) (*entities.TrackingSession, error)

	// GetByIDs retrieves multiple sessions owned by the user.
	GetByIDs(ctx context.Context, userID string, ids []string) ([]*entities.TrackingSession, error)

	// ListByUser retrieves the user's sessions, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.TrackingSession, error)

	// Update applies the given update to a session owned by the user.
	Update(ctx context.Context, userID, id string, update SessionUpdate) error

	// TouchActivity updates the session's last-activity timestamp.
	TouchActivity(ctx context.Context, id string, at time.Time) error

	// Delete removes a session and, via cascade, its fixes and sightings.
	Delete(ctx context.Context, userID, id string) error
}

// DeviceRepository maintains client device liveness.
type DeviceRepository interface {
	// TouchLastSeen upserts the device row and bumps its last-seen
	// timestamp. Called on every authenticated ingest, stored or not.
	TouchLastSeen(ctx context.Context, userID, deviceID string, at time.Time) error

	// ListByUser retrieves the user's registered client devices.
	ListByUser(ctx context.Context, userID string) ([]*entities.ClientDevice, error)
}
