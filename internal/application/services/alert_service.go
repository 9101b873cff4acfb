package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/internal/domain/repositories"
)

// AlertService manages emergency alerts and fans their state changes out to
// the event bus and push notifications.
type AlertService struct {
	repo     repositories.AlertRepository
	eventBus providers.EventBus
	notifier providers.NotificationProvider
}

// NewAlertService creates a new alert service.
func NewAlertService(repo repositories.AlertRepository, notifier providers.NotificationProvider) *AlertService {
	return &AlertService{
		repo:     repo,
		notifier: notifier,
	}
}

// SetEventBus enables real-time alert events when a bus is available.
func (s *AlertService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// Create raises a new alert. Event publication and push delivery are
// best-effort: the alert is persisted even when fan-out fails.
func (s *AlertService) Create(ctx context.Context, userID, message string, latitude, longitude *float64) (*entities.Alert, error) {
	alert := &entities.Alert{
		ID:        uuid.New().String(),
		UserID:    userID,
		Message:   message,
		Latitude:  latitude,
		Longitude: longitude,
		Status:    entities.AlertStatusActive,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.publish(ctx, alert, "alert.created")

	if s.notifier != nil {
		notification := &providers.PushNotification{
			Title: "Emergency alert",
			Body:  "An emergency alert was raised. Open the app to see the location.",
			Data:  map[string]string{"alert_id": alert.ID},
		}
		if err := s.notifier.SendToUser(ctx, userID, notification); err != nil {
			logFromCtx(ctx).Warn().Err(err).Str("alert_id", alert.ID).Msg("failed to send alert push notification")
		}
	}

	return alert, nil
}

// Resolve marks an alert resolved and publishes the state change.
func (s *AlertService) Resolve(ctx context.Context, userID, id string) error {
	if err := s.repo.Resolve(ctx, userID, id); err != nil {
		return err
	}

	alert, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	s.publish(ctx, alert, "alert.resolved")
	return nil
}

// List retrieves the user's alerts within the time range.
func (s *AlertService) List(ctx context.Context, userID string, timeRange repositories.TimeRange, direction repositories.AlertDirection) ([]*entities.Alert, error) {
	return s.repo.QueryAlerts(ctx, userID, timeRange, direction)
}

func (s *AlertService) publish(ctx context.Context, alert *entities.Alert, eventType string) {
	if s.eventBus == nil {
		return
	}

	event := &entities.AlertEvent{
		ID:        uuid.New().String(),
		AlertID:   alert.ID,
		UserID:    alert.UserID,
		Type:      eventType,
		Status:    alert.Status,
		Timestamp: time.Now(),
	}

	for _, channel := range []string{providers.EventChannelAlerts, providers.GetUserAlertChannel(alert.UserID)} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			logFromCtx(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish alert event")
		}
	}
}
