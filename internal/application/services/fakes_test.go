package services

import (
	"context"
	"sync"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/providers"
	"github.com/safetrail/server/internal/domain/repositories"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// In-memory repository fakes for service tests. They implement the minimum
// semantics the services rely on, guarded by a mutex because the analytics
// and overlap services fetch concurrently.

type fakeFixRepo struct {
	mu    sync.Mutex
	fixes []*entities.LocationFix

	findLastErr       error
	createErr         error
	queryFixesErr     error
	querySightingsErr map[string]error
}

func (r *fakeFixRepo) Create(_ context.Context, fix *entities.LocationFix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.fixes = append(r.fixes, fix)
	return nil
}

func (r *fakeFixRepo) FindLast(_ context.Context, userID string, scope repositories.FixScope) (*entities.LocationFix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findLastErr != nil {
		return nil, r.findLastErr
	}
	var last *entities.LocationFix
	for _, fix := range r.fixes {
		if fix.UserID != userID || !matchesScope(fix, scope) {
			continue
		}
		if last == nil || fix.Timestamp.After(last.Timestamp) {
			last = fix
		}
	}
	return last, nil
}

func (r *fakeFixRepo) QueryFixes(_ context.Context, userID string, scope repositories.FixScope, timeRange repositories.TimeRange) ([]*entities.LocationFix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queryFixesErr != nil {
		return nil, r.queryFixesErr
	}
	var out []*entities.LocationFix
	for _, fix := range r.fixes {
		if fix.UserID == userID && matchesScope(fix, scope) && timeRange.Contains(fix.Timestamp) {
			out = append(out, fix)
		}
	}
	return out, nil
}

func (r *fakeFixRepo) QuerySightings(_ context.Context, fixIDs []string, kindFilter *entities.DeviceKind) ([]*entities.RadioSighting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := map[string]struct{}{}
	for _, id := range fixIDs {
		if err := r.querySightingsErr[id]; err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	var out []*entities.RadioSighting
	for _, fix := range r.fixes {
		if _, ok := ids[fix.ID]; !ok {
			continue
		}
		for _, sighting := range fix.Sightings {
			if kindFilter != nil && sighting.Kind != *kindFilter {
				continue
			}
			out = append(out, sighting)
		}
	}
	return out, nil
}

func matchesScope(fix *entities.LocationFix, scope repositories.FixScope) bool {
	if scope.TrackingSessionID != "" {
		return fix.TrackingSessionID != nil && *fix.TrackingSessionID == scope.TrackingSessionID
	}
	if scope.DeviceID != "" {
		return fix.DeviceID != nil && *fix.DeviceID == scope.DeviceID
	}
	return true
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entities.TrackingSession
	touched  map[string]time.Time
	touchErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: map[string]*entities.TrackingSession{},
		touched:  map[string]time.Time{},
	}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *entities.TrackingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, userID, id string) (*entities.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return nil, apperrors.NewNotFoundError("session not found")
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) GetByIDs(_ context.Context, userID string, ids []string) ([]*entities.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TrackingSession
	for _, id := range ids {
		if session, ok := r.sessions[id]; ok && session.UserID == userID {
			copied := *session
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*entities.TrackingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TrackingSession
	for _, session := range r.sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, userID, id string, update repositories.SessionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return apperrors.NewNotFoundError("session not found")
	}
	if update.Name != nil {
		session.Name = *update.Name
	}
	if update.Quality != nil {
		session.Quality = update.Quality
	}
	if update.EndTime != nil {
		session.EndTime = update.EndTime
	}
	return nil
}

func (r *fakeSessionRepo) TouchActivity(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	r.touched[id] = at
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.UserID != userID {
		return apperrors.NewNotFoundError("session not found")
	}
	delete(r.sessions, id)
	return nil
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	touched map[string]time.Time
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{touched: map[string]time.Time{}}
}

func (r *fakeDeviceRepo) TouchLastSeen(_ context.Context, userID, deviceID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[deviceID] = at
	return nil
}

func (r *fakeDeviceRepo) ListByUser(_ context.Context, userID string) ([]*entities.ClientDevice, error) {
	return nil, nil
}

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*entities.Alert
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *entities.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *fakeAlertRepo) GetByID(_ context.Context, userID, id string) (*entities.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alert := range r.alerts {
		if alert.ID == id && alert.UserID == userID {
			copied := *alert
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFoundError("alert not found")
}

func (r *fakeAlertRepo) QueryAlerts(_ context.Context, userID string, timeRange repositories.TimeRange, direction repositories.AlertDirection) ([]*entities.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Alert
	for _, alert := range r.alerts {
		if alert.UserID == userID && timeRange.Contains(alert.CreatedAt) {
			out = append(out, alert)
		}
	}
	return out, nil
}

func (r *fakeAlertRepo) Resolve(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alert := range r.alerts {
		if alert.ID == id && alert.UserID == userID {
			now := time.Now()
			alert.Status = entities.AlertStatusResolved
			alert.ResolvedAt = &now
			return nil
		}
	}
	return apperrors.NewNotFoundError("alert not found")
}

type fakeTrustRepo struct {
	mu      sync.Mutex
	entries map[string]entities.TrustSet
}

func newFakeTrustRepo() *fakeTrustRepo {
	return &fakeTrustRepo{entries: map[string]entities.TrustSet{}}
}

func (r *fakeTrustRepo) GetSet(_ context.Context, userID string) (entities.TrustSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := entities.TrustSet{}
	for key := range r.entries[userID] {
		set[key] = struct{}{}
	}
	return set, nil
}

func (r *fakeTrustRepo) List(_ context.Context, userID string) ([]*entities.TrustedDevice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TrustedDevice
	for key := range r.entries[userID] {
		out = append(out, &entities.TrustedDevice{
			UserID:     userID,
			Kind:       key.Kind,
			Identifier: key.Identifier,
		})
	}
	return out, nil
}

func (r *fakeTrustRepo) Set(_ context.Context, userID string, kind entities.DeviceKind, identifier string, trusted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.entries[userID]
	if !ok {
		set = entities.TrustSet{}
		r.entries[userID] = set
	}
	key := entities.TrustKey{Kind: kind, Identifier: identifier}
	if trusted {
		set[key] = struct{}{}
	} else {
		delete(set, key)
	}
	return nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events map[string][]*entities.AlertEvent
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{events: map[string][]*entities.AlertEvent{}}
}

func (b *fakeEventBus) Publish(_ context.Context, channel string, event *entities.AlertEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[channel] = append(b.events[channel], event)
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AlertEvent, error) {
	ch := make(chan *entities.AlertEvent)
	close(ch)
	return ch, nil
}

func (b *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *fakeEventBus) Close() error { return nil }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*providers.PushNotification
	err  error
}

func (n *fakeNotifier) SendToUser(_ context.Context, userID string, notification *providers.PushNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}
