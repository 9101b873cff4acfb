package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/pkg/config"
)

// FCMSender delivers push notifications through Firebase Cloud Messaging.
type FCMSender struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewFCMSender creates a new FCM sender.
func NewFCMSender(cfg *config.PushConfig) (*FCMSender, error) {
	if cfg.FCMAPIKey == "" {
		return nil, fmt.Errorf("FCM_API_KEY must be set")
	}

	return &FCMSender{
		apiKey:   cfg.FCMAPIKey,
		endpoint: cfg.FCMEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// fcmMessage is the downstream message payload.
type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Priority     string            `json:"priority"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// SendToUser delivers the notification to the user's topic. Devices
// subscribe to their owner's topic on registration.
func (s *FCMSender) SendToUser(ctx context.Context, userID string, notification *providers.PushNotification) error {
	message := fcmMessage{
		To: "/topics/user-" + userID,
		Notification: fcmNotification{
			Title: notification.Title,
			Body:  notification.Body,
			Sound: "default",
		},
		Data:     notification.Data,
		Priority: "high",
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal FCM message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create FCM request: %w", err)
	}

	req.Header.Set("Authorization", "key="+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send FCM request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read FCM response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FCM API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed fcmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to unmarshal FCM response: %w", err)
	}

	if parsed.Failure > 0 {
		log.Warn().
			Str("user_id", userID).
			Int("failure", parsed.Failure).
			Msg("some FCM deliveries failed")
	}

	return nil
}

// NoopSender is used when push delivery is not configured.
type NoopSender struct{}

// SendToUser logs and drops the notification.
func (NoopSender) SendToUser(ctx context.Context, userID string, notification *providers.PushNotification) error {
	log.Debug().
		Str("user_id", userID).
		Str("title", notification.Title).
		Msg("push delivery disabled, dropping notification")
	return nil
}
