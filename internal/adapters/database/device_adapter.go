package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// DeviceAdapter implements the DeviceRepository interface
type DeviceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDeviceAdapter creates a new client device adapter
func NewDeviceAdapter(client *postgres.Client) repositories.DeviceRepository {
	return &DeviceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// TouchLastSeen upserts the device row and bumps its liveness timestamp.
func (a *DeviceAdapter) TouchLastSeen(ctx context.Context, userID, deviceID string, at time.Time) error {
	query := `
		INSERT INTO client_devices (id, user_id, last_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
	`

	if _, err := a.client.DB().ExecContext(ctx, query, deviceID, userID, at); err != nil {
		return apperrors.NewInternalError("failed to touch device liveness", err)
	}

	return nil
}

// ListByUser retrieves the user's registered client devices.
func (a *DeviceAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.ClientDevice, error) {
	query, args, err := a.db.From("client_devices").
		Select("id", "user_id", "name", "last_seen_at").
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("last_seen_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build device list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list devices", err)
	}
	defer rows.Close()

	devices := []*entities.ClientDevice{}
	for rows.Next() {
		device := &entities.ClientDevice{}
		var name sql.NullString
		if err := rows.Scan(&device.ID, &device.UserID, &name, &device.LastSeenAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan device", err)
		}
		device.Name = name.String
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating devices", err)
	}

	return devices, nil
}
