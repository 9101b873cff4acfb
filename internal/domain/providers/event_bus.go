package providers

import (
	"context"

	"github.com/safetrail/server/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to alert
// events for real-time consumers (companion apps, SSE streams).
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AlertEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AlertEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelAlerts is the channel carrying every alert update
	EventChannelAlerts = "alerts:updates"

	// EventChannelUserPrefix is the prefix for per-user alert channels
	EventChannelUserPrefix = "alerts:user:"
)

// GetUserAlertChannel returns the channel name for a specific user
func GetUserAlertChannel(userID string) string {
	return EventChannelUserPrefix + userID
}
