package repositories

import (
	"context"

	"github.com/safetrail/server/internal/domain/entities"
)

// AlertDirection selects alerts raised by the user or shared with them.
type AlertDirection string

const (
	AlertDirectionSent     AlertDirection = "sent"
	AlertDirectionReceived AlertDirection = "received"
)

// AlertRepository defines the interface for emergency alert persistence.
type AlertRepository interface {
	// Create persists a new alert.
	Create(ctx context.Context, alert *entities.Alert) error

	// GetByID retrieves an alert owned by the user.
	GetByID(ctx context.Context, userID, id string) (*entities.Alert, error)

	// QueryAlerts retrieves the user's alerts within the time range.
	QueryAlerts(ctx context.Context, userID string, timeRange TimeRange, direction AlertDirection) ([]*entities.Alert, error)

	// Resolve marks an alert resolved.
	Resolve(ctx context.Context, userID, id string) error
}
