package repositories

import (
	"context"

	"github.com/safetrail/server/internal/domain/entities"
)

// TrustRepository defines the interface for the per-user trusted device set.
type TrustRepository interface {
	// GetSet returns a snapshot of the user's trusted devices.
	GetSet(ctx context.Context, userID string) (entities.TrustSet, error)

	// List returns the user's trust entries, newest first.
	List(ctx context.Context, userID string) ([]*entities.TrustedDevice, error)

	// Set adds or removes a trust entry. Both directions are idempotent:
	// setting an already-set value succeeds without effect.
	Set(ctx context.Context, userID string, kind entities.DeviceKind, identifier string, trusted bool) error
}
