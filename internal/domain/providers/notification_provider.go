package providers

import "context"

// PushNotification is a message delivered to a user's registered devices.
type PushNotification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// NotificationProvider delivers push notifications. Implementations must be
// safe to call concurrently; delivery is best-effort and failures must not
// propagate into the request that triggered them.
type NotificationProvider interface {
	// SendToUser delivers the notification to every device token
	// registered for the user.
	SendToUser(ctx context.Context, userID string, notification *PushNotification) error
}
