package services

import (
	"context"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// TrustService manages the per-user trusted device allow-list. Trust is an
// overlay: it annotates and suppresses classification downstream, it never
// touches the underlying sighting data.
type TrustService struct {
	repo repositories.TrustRepository
}

// NewTrustService creates a new trust service.
func NewTrustService(repo repositories.TrustRepository) *TrustService {
	return &TrustService{repo: repo}
}

// IsTrusted reports whether the user has marked the device as known.
func (s *TrustService) IsTrusted(ctx context.Context, userID string, kind entities.DeviceKind, identifier string) (bool, error) {
	set, err := s.repo.GetSet(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Contains(kind, identifier), nil
}

// GetSet returns a snapshot of the user's trust set for request-scoped use.
func (s *TrustService) GetSet(ctx context.Context, userID string) (entities.TrustSet, error) {
	return s.repo.GetSet(ctx, userID)
}

// List returns the user's trust entries.
func (s *TrustService) List(ctx context.Context, userID string) ([]*entities.TrustedDevice, error) {
	return s.repo.List(ctx, userID)
}

// SetTrusted adds or removes a trust entry. Idempotent in both directions.
func (s *TrustService) SetTrusted(ctx context.Context, userID string, kind entities.DeviceKind, identifier string, trusted bool) error {
	if !kind.Valid() {
		return apperrors.NewValidationError("kind must be wifi or ble")
	}
	if identifier == "" {
		return apperrors.NewValidationError("identifier is required")
	}
	return s.repo.Set(ctx, userID, kind, identifier, trusted)
}
