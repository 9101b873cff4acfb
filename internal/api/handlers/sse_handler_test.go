package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEventBus struct {
	events chan *entities.AlertEvent
}

func (b *stubEventBus) Publish(_ context.Context, _ string, event *entities.AlertEvent) error {
	b.events <- event
	return nil
}

func (b *stubEventBus) Subscribe(_ context.Context, _ string) (<-chan *entities.AlertEvent, error) {
	return b.events, nil
}

func (b *stubEventBus) Unsubscribe(_ context.Context, _ string) error { return nil }

func (b *stubEventBus) Close() error { return nil }

func TestSSEHandler_ClientRegistration(t *testing.T) {
	handler := NewSSEHandler(&stubEventBus{events: make(chan *entities.AlertEvent, 1)})
	channel := providers.GetUserAlertChannel("user-1")

	clientChan := make(chan *entities.AlertEvent, 1)
	handler.registerClient(channel, clientChan)
	assert.Equal(t, 1, handler.GetClientCount())

	second := make(chan *entities.AlertEvent, 1)
	handler.registerClient(channel, second)
	assert.Equal(t, 2, handler.GetClientCount())

	handler.unregisterClient(channel, clientChan)
	handler.unregisterClient(channel, second)
	assert.Zero(t, handler.GetClientCount())
}

func TestSSEHandler_SendEvent(t *testing.T) {
	handler := NewSSEHandler(&stubEventBus{events: make(chan *entities.AlertEvent, 1)})
	rec := httptest.NewRecorder()

	handler.sendEvent(rec, "alert.created", map[string]string{"alert_id": "a1"})

	body := rec.Body.String()
	assert.Contains(t, body, "event: alert.created\n")
	assert.Contains(t, body, `data: {"alert_id":"a1"}`)
}

func TestSSEHandler_StreamRequiresUser(t *testing.T) {
	handler := NewSSEHandler(&stubEventBus{events: make(chan *entities.AlertEvent, 1)})
	req := httptest.NewRequest(http.MethodGet, "/api/stream/alerts", nil)
	rec := httptest.NewRecorder()

	handler.StreamAlerts(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
