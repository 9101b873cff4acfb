package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// TrustAdapter implements the TrustRepository interface
type TrustAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTrustAdapter creates a new trusted device adapter
func NewTrustAdapter(client *postgres.Client) repositories.TrustRepository {
	return &TrustAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetSet returns a snapshot of the user's trusted devices.
func (a *TrustAdapter) GetSet(ctx context.Context, userID string) (entities.TrustSet, error) {
	query, args, err := a.db.From("trusted_devices").
		Select("kind", "identifier").
		Where(goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build trust set query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query trust set", err)
	}
	defer rows.Close()

	set := entities.TrustSet{}
	for rows.Next() {
		var kind, identifier string
		if err := rows.Scan(&kind, &identifier); err != nil {
			return nil, apperrors.NewInternalError("failed to scan trust entry", err)
		}
		set[entities.TrustKey{Kind: entities.DeviceKind(kind), Identifier: identifier}] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating trust entries", err)
	}

	return set, nil
}

// List returns the user's trust entries, newest first.
func (a *TrustAdapter) List(ctx context.Context, userID string) ([]*entities.TrustedDevice, error) {
	query, args, err := a.db.From("trusted_devices").
		Select("user_id", "kind", "identifier", "created_at").
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build trust list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list trust entries", err)
	}
	defer rows.Close()

	entries := []*entities.TrustedDevice{}
	for rows.Next() {
		entry := &entities.TrustedDevice{}
		var kind string
		if err := rows.Scan(&entry.UserID, &kind, &entry.Identifier, &entry.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan trust entry", err)
		}
		entry.Kind = entities.DeviceKind(kind)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating trust entries", err)
	}

	return entries, nil
}

// Set adds or removes a trust entry. Both directions are idempotent.
func (a *TrustAdapter) Set(ctx context.Context, userID string, kind entities.DeviceKind, identifier string, trusted bool) error {
	if trusted {
		query := `
			INSERT INTO trusted_devices (user_id, kind, identifier, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, kind, identifier) DO NOTHING
		`
		if _, err := a.client.DB().ExecContext(ctx, query, userID, string(kind), identifier, time.Now()); err != nil {
			return apperrors.NewInternalError("failed to add trust entry", err)
		}
		return nil
	}

	query, args, err := a.db.Delete("trusted_devices").
		Where(
			goqu.C("user_id").Eq(userID),
			goqu.C("kind").Eq(string(kind)),
			goqu.C("identifier").Eq(identifier),
		).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build trust delete query", err)
	}

	// Removing an absent entry is a no-op success.
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to remove trust entry", err)
	}

	return nil
}
