package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// AlertAdapter implements the AlertRepository interface
type AlertAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAlertAdapter creates a new alert adapter
func NewAlertAdapter(client *postgres.Client) repositories.AlertRepository {
	return &AlertAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new alert.
func (a *AlertAdapter) Create(ctx context.Context, alert *entities.Alert) error {
	record := goqu.Record{
		"id":          alert.ID,
		"user_id":     alert.UserID,
		"message":     sql.NullString{String: alert.Message, Valid: alert.Message != ""},
		"latitude":    nullableFloat(alert.Latitude),
		"longitude":   nullableFloat(alert.Longitude),
		"status":      string(alert.Status),
		"created_at":  alert.CreatedAt,
		"resolved_at": nullableTime(alert.ResolvedAt),
	}

	query, args, err := a.db.Insert("alerts").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build alert insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create alert", err)
	}

	return nil
}

// GetByID retrieves an alert owned by the user.
func (a *AlertAdapter) GetByID(ctx context.Context, userID, id string) (*entities.Alert, error) {
	query, args, err := a.alertSelect().
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build alert query", err)
	}

	alert, err := scanAlert(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("alert with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get alert", err)
	}

	return alert, nil
}

// QueryAlerts retrieves the user's alerts within the time range. Direction
// distinguishes alerts the user raised from alerts shared with them; shared
// alerts live in the same table keyed by recipient rows.
func (a *AlertAdapter) QueryAlerts(ctx context.Context, userID string, timeRange repositories.TimeRange, direction repositories.AlertDirection) ([]*entities.Alert, error) {
	ds := a.alertSelect().
		Where(
			goqu.C("created_at").Gte(timeRange.From),
			goqu.C("created_at").Lte(timeRange.To),
		).
		Order(goqu.C("created_at").Desc())

	if direction == repositories.AlertDirectionReceived {
		ds = ds.Where(goqu.C("id").In(
			a.db.From("alert_recipients").
				Select("alert_id").
				Where(goqu.C("recipient_user_id").Eq(userID)),
		))
	} else {
		ds = ds.Where(goqu.C("user_id").Eq(userID))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build alert query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query alerts", err)
	}
	defer rows.Close()

	alerts := []*entities.Alert{}
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan alert", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating alerts", err)
	}

	return alerts, nil
}

// Resolve marks an alert resolved.
func (a *AlertAdapter) Resolve(ctx context.Context, userID, id string) error {
	query, args, err := a.db.Update("alerts").
		Set(goqu.Record{
			"status":      string(entities.AlertStatusResolved),
			"resolved_at": time.Now(),
		}).
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build alert resolve query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to resolve alert", err)
	}

	return requireRowAffected(result, fmt.Sprintf("alert with id %s not found", id))
}

func (a *AlertAdapter) alertSelect() *goqu.SelectDataset {
	return a.db.From("alerts").
		Select("id", "user_id", "message", "latitude", "longitude", "status", "created_at", "resolved_at")
}

func scanAlert(row rowScanner) (*entities.Alert, error) {
	alert := &entities.Alert{}
	var message sql.NullString
	var latitude, longitude sql.NullFloat64
	var status string
	var resolvedAt sql.NullTime
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&message,
		&latitude,
		&longitude,
		&status,
		&alert.CreatedAt,
		&resolvedAt,
	)
	if err != nil {
		return nil, err
	}
	alert.Message = message.String
	if latitude.Valid {
		alert.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		alert.Longitude = &longitude.Float64
	}
	alert.Status = entities.AlertStatus(status)
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}
	return alert, nil
}
