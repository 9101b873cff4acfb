package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// SessionService manages tracking session lifecycle.
type SessionService struct {
	repo repositories.SessionRepository
}

// NewSessionService creates a new session service.
func NewSessionService(repo repositories.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Start creates a new open session for the user.
func (s *SessionService) Start(ctx context.Context, userID, name string) (*entities.TrackingSession, error) {
	now := time.Now()
	session := &entities.TrackingSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           name,
		StartTime:      now,
		LastActivityAt: now,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Stop closes an open session. Stopping an already-closed session is a
// conflict, not a silent overwrite of its end time.
func (s *SessionService) Stop(ctx context.Context, userID, id string) (*entities.TrackingSession, error) {
	session, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if session.EndTime != nil {
		return nil, apperrors.NewConflictError("session is already stopped")
	}

	now := time.Now()
	if err := s.repo.Update(ctx, userID, id, repositories.SessionUpdate{EndTime: &now}); err != nil {
		return nil, err
	}

	session.EndTime = &now
	return session, nil
}

// Get retrieves a session owned by the user.
func (s *SessionService) Get(ctx context.Context, userID, id string) (*entities.TrackingSession, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List retrieves the user's sessions, newest first.
func (s *SessionService) List(ctx context.Context, userID string, limit, offset int) ([]*entities.TrackingSession, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Rename sets the user-visible session name.
func (s *SessionService) Rename(ctx context.Context, userID, id, name string) error {
	return s.repo.Update(ctx, userID, id, repositories.SessionUpdate{Name: &name})
}

// SetQuality sets the user-assigned session quality rating.
func (s *SessionService) SetQuality(ctx context.Context, userID, id string, quality entities.SessionQuality) error {
	switch quality {
	case entities.SessionQualityGood, entities.SessionQualityRegular, entities.SessionQualityBad:
	default:
		return apperrors.NewValidationError("quality must be GOOD, REGULAR or BAD")
	}
	return s.repo.Update(ctx, userID, id, repositories.SessionUpdate{Quality: &quality})
}

// Delete removes a session and all its fixes and sightings.
func (s *SessionService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
