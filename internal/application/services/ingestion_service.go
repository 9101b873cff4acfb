package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/observability"
	"github.com/safetrail/server/pkg/geo"
)

const (
	// Fixes with worse reported accuracy than this are not stored.
	maxAccuracyMeters = 50.0

	// Fixes closer than this to the previous fix in the same scope are
	// treated as stationary noise and dropped.
	minMovementMeters = 3.0
)

// RawFix is a normalized incoming fix. The transport layer resolves
// alternative client field spellings before this type is built; the core
// never branches on them.
type RawFix struct {
	UserID            string
	DeviceID          string
	TrackingSessionID string
	Latitude          float64
	Longitude         float64
	Accuracy          *float64
	Altitude          *float64
	Speed             *float64
	Timestamp         time.Time
	Sightings         []RawSighting
}

// RawSighting is a normalized incoming radio observation.
type RawSighting struct {
	Kind        entities.DeviceKind
	Identifier  string
	DisplayName string
	RSSI        int
	Frequency   *int
}

// IngestOutcome reports what happened to a single fix.
type IngestOutcome struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	FixID    string `json:"fix_id,omitempty"`
}

// IngestionService filters and persists incoming location fixes.
type IngestionService struct {
	fixes    repositories.FixRepository
	sessions repositories.SessionRepository
	devices  repositories.DeviceRepository
	metrics  *observability.Metrics
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	fixes repositories.FixRepository,
	sessions repositories.SessionRepository,
	devices repositories.DeviceRepository,
	metrics *observability.Metrics,
) *IngestionService {
	return &IngestionService{
		fixes:    fixes,
		sessions: sessions,
		devices:  devices,
		metrics:  metrics,
	}
}

// Ingest runs one fix through the filter pipeline. A filtered fix is not an
// error: the outcome carries the skip reason. Liveness bookkeeping happens
// for every authenticated call except coordinate-validation rejections.
func (s *IngestionService) Ingest(ctx context.Context, raw RawFix) (*IngestOutcome, error) {
	if !geo.IsFiniteCoordinate(raw.Latitude, raw.Longitude) {
		outcome := &IngestOutcome{Accepted: false, Reason: entities.SkipReasonInvalidCoordinates}
		observability.RecordIngestMetric(ctx, s.metrics, false, outcome.Reason)
		return outcome, nil
	}

	now := time.Now()
	s.touchLiveness(ctx, raw, now)

	if raw.Accuracy != nil && *raw.Accuracy > maxAccuracyMeters {
		outcome := &IngestOutcome{Accepted: false, Reason: entities.SkipReasonLowGPSAccuracy}
		observability.RecordIngestMetric(ctx, s.metrics, false, outcome.Reason)
		return outcome, nil
	}

	last, err := s.fixes.FindLast(ctx, raw.UserID, s.dedupeScope(raw))
	if err != nil {
		return nil, err
	}
	if last != nil {
		distance := geo.HaversineMeters(last.Latitude, last.Longitude, raw.Latitude, raw.Longitude)
		if distance < minMovementMeters {
			outcome := &IngestOutcome{Accepted: false, Reason: entities.SkipReasonMovementBelowThreshold}
			observability.RecordIngestMetric(ctx, s.metrics, false, outcome.Reason)
			return outcome, nil
		}
	}

	fix := s.buildFix(raw)
	if err := s.fixes.Create(ctx, fix); err != nil {
		return nil, err
	}

	observability.RecordIngestMetric(ctx, s.metrics, true, "")
	return &IngestOutcome{Accepted: true, FixID: fix.ID}, nil
}

// IngestBatch runs each fix through the single-fix pipeline independently,
// in order. The batch fails wholesale only when every item errored.
func (s *IngestionService) IngestBatch(ctx context.Context, fixes []RawFix) (*entities.IngestResult, error) {
	result := &entities.IngestResult{Reasons: map[string]int{}}

	for i, raw := range fixes {
		outcome, err := s.Ingest(ctx, raw)
		if err != nil {
			result.Errored++
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if outcome.Accepted {
			result.Inserted++
		} else {
			result.Skipped++
			result.Reasons[outcome.Reason]++
		}
	}

	if len(fixes) > 0 && result.Errored == len(fixes) {
		return result, fmt.Errorf("all %d fixes failed: %s", result.Errored, result.Errors[0])
	}

	return result, nil
}

// dedupeScope prefers the tracking session over the originating device so a
// new session starts with a clean movement baseline.
func (s *IngestionService) dedupeScope(raw RawFix) repositories.FixScope {
	if raw.TrackingSessionID != "" {
		return repositories.FixScope{TrackingSessionID: raw.TrackingSessionID}
	}
	return repositories.FixScope{DeviceID: raw.DeviceID}
}

func (s *IngestionService) buildFix(raw RawFix) *entities.LocationFix {
	fix := &entities.LocationFix{
		ID:        uuid.New().String(),
		UserID:    raw.UserID,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Accuracy:  raw.Accuracy,
		Altitude:  raw.Altitude,
		Speed:     raw.Speed,
		Timestamp: raw.Timestamp,
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now()
	}
	if raw.DeviceID != "" {
		deviceID := raw.DeviceID
		fix.DeviceID = &deviceID
	}
	if raw.TrackingSessionID != "" {
		sessionID := raw.TrackingSessionID
		fix.TrackingSessionID = &sessionID
	}

	for _, rawSighting := range raw.Sightings {
		// Malformed sightings are dropped, never fatal.
		if rawSighting.Identifier == "" || !rawSighting.Kind.Valid() {
			continue
		}
		fix.Sightings = append(fix.Sightings, &entities.RadioSighting{
			ID:          uuid.New().String(),
			LocationID:  fix.ID,
			Kind:        rawSighting.Kind,
			Identifier:  rawSighting.Identifier,
			DisplayName: rawSighting.DisplayName,
			RSSI:        rawSighting.RSSI,
			Frequency:   rawSighting.Frequency,
		})
	}

	return fix
}

// touchLiveness updates device and session last-seen timestamps. These are
// advisory; failures are swallowed so they never block ingestion.
func (s *IngestionService) touchLiveness(ctx context.Context, raw RawFix, at time.Time) {
	if raw.DeviceID != "" {
		if err := s.devices.TouchLastSeen(ctx, raw.UserID, raw.DeviceID, at); err != nil {
			logFromCtx(ctx).Warn().Err(err).Str("device_id", raw.DeviceID).Msg("failed to touch device liveness")
		}
	}
	if raw.TrackingSessionID != "" {
		if err := s.sessions.TouchActivity(ctx, raw.TrackingSessionID, at); err != nil {
			logFromCtx(ctx).Warn().Err(err).Str("session_id", raw.TrackingSessionID).Msg("failed to touch session activity")
		}
	}
}
