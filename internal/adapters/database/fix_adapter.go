package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/internal/infrastructure/clients/postgres"
	apperrors "github.com/safetrail/server/pkg/errors"
)

// FixAdapter implements the FixRepository interface
type FixAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFixAdapter creates a new location fix adapter
func NewFixAdapter(client *postgres.Client) repositories.FixRepository {
	return &FixAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a fix and its sightings in one transaction. Sightings
// cascade-delete with the fix, so a partial insert never survives.
func (a *FixAdapter) Create(ctx context.Context, fix *entities.LocationFix) error {
	if fix == nil {
		return apperrors.NewInternalError("fix is nil", fmt.Errorf("fix is nil"))
	}

	fixRecord := goqu.Record{
		"id":                  fix.ID,
		"user_id":             fix.UserID,
		"device_id":           nullableString(fix.DeviceID),
		"tracking_session_id": nullableString(fix.TrackingSessionID),
		"latitude":            fix.Latitude,
		"longitude":           fix.Longitude,
		"accuracy":            nullableFloat(fix.Accuracy),
		"altitude":            nullableFloat(fix.Altitude),
		"speed":               nullableFloat(fix.Speed),
		"timestamp":           fix.Timestamp,
	}

	fixQuery, fixArgs, err := a.db.Insert("location_fixes").Rows(fixRecord).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build fix insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fixQuery, fixArgs...); err != nil {
		return apperrors.NewInternalError("failed to create fix", err)
	}

	if len(fix.Sightings) > 0 {
		rows := make([]interface{}, 0, len(fix.Sightings))
		for _, s := range fix.Sightings {
			rows = append(rows, goqu.Record{
				"id":           s.ID,
				"location_id":  fix.ID,
				"kind":         string(s.Kind),
				"identifier":   s.Identifier,
				"display_name": sql.NullString{String: s.DisplayName, Valid: s.DisplayName != ""},
				"rssi":         s.RSSI,
				"frequency":    nullableInt(s.Frequency),
			})
		}

		sightingQuery, sightingArgs, err := a.db.Insert("radio_sightings").Rows(rows...).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build sighting insert query", err)
		}

		if _, err := tx.ExecContext(ctx, sightingQuery, sightingArgs...); err != nil {
			return apperrors.NewInternalError("failed to create sightings", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit fix", err)
	}

	return nil
}

// FindLast returns the most recent fix for the user within the scope.
func (a *FixAdapter) FindLast(ctx context.Context, userID string, scope repositories.FixScope) (*entities.LocationFix, error) {
	ds := a.db.From("location_fixes").
		Select(fixColumns()...).
		Where(goqu.C("user_id").Eq(userID))
	ds = applyScope(ds, scope)
	ds = ds.Order(goqu.C("timestamp").Desc()).Limit(1)

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build find-last query", err)
	}

	fix, err := scanFix(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find last fix", err)
	}

	return fix, nil
}

// QueryFixes returns fixes in the scope and range, newest first.
func (a *FixAdapter) QueryFixes(ctx context.Context, userID string, scope repositories.FixScope, timeRange repositories.TimeRange) ([]*entities.LocationFix, error) {
	ds := a.db.From("location_fixes").
		Select(fixColumns()...).
		Where(
			goqu.C("user_id").Eq(userID),
			goqu.C("timestamp").Gte(timeRange.From),
			goqu.C("timestamp").Lte(timeRange.To),
		)
	ds = applyScope(ds, scope)
	ds = ds.Order(goqu.C("timestamp").Desc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build fix query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query fixes", err)
	}
	defer rows.Close()

	fixes := []*entities.LocationFix{}
	for rows.Next() {
		fix, err := scanFix(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan fix", err)
		}
		fixes = append(fixes, fix)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating fixes", err)
	}

	return fixes, nil
}

// QuerySightings returns the sightings owned by the given fixes.
func (a *FixAdapter) QuerySightings(ctx context.Context, fixIDs []string, kindFilter *entities.DeviceKind) ([]*entities.RadioSighting, error) {
	if len(fixIDs) == 0 {
		return []*entities.RadioSighting{}, nil
	}

	ds := a.db.From("radio_sightings").
		Select("id", "location_id", "kind", "identifier", "display_name", "rssi", "frequency").
		Where(goqu.C("location_id").In(fixIDs))
	if kindFilter != nil {
		ds = ds.Where(goqu.C("kind").Eq(string(*kindFilter)))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build sighting query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query sightings", err)
	}
	defer rows.Close()

	sightings := []*entities.RadioSighting{}
	for rows.Next() {
		sighting := &entities.RadioSighting{}
		var displayName sql.NullString
		var frequency sql.NullInt64
		var kind string
		err := rows.Scan(
			&sighting.ID,
			&sighting.LocationID,
			&kind,
			&sighting.Identifier,
			&displayName,
			&sighting.RSSI,
			&frequency,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan sighting", err)
		}
		sighting.Kind = entities.DeviceKind(kind)
		sighting.DisplayName = displayName.String
		if frequency.Valid {
			f := int(frequency.Int64)
			sighting.Frequency = &f
		}
		sightings = append(sightings, sighting)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating sightings", err)
	}

	return sightings, nil
}

func fixColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "device_id", "tracking_session_id",
		"latitude", "longitude", "accuracy", "altitude", "speed", "timestamp",
	}
}

func applyScope(ds *goqu.SelectDataset, scope repositories.FixScope) *goqu.SelectDataset {
	if scope.TrackingSessionID != "" {
		ds = ds.Where(goqu.C("tracking_session_id").Eq(scope.TrackingSessionID))
	}
	if scope.DeviceID != "" {
		ds = ds.Where(goqu.C("device_id").Eq(scope.DeviceID))
	}
	return ds
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFix(row rowScanner) (*entities.LocationFix, error) {
	fix := &entities.LocationFix{}
	var deviceID, sessionID sql.NullString
	var accuracy, altitude, speed sql.NullFloat64
	err := row.Scan(
		&fix.ID,
		&fix.UserID,
		&deviceID,
		&sessionID,
		&fix.Latitude,
		&fix.Longitude,
		&accuracy,
		&altitude,
		&speed,
		&fix.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	if deviceID.Valid {
		fix.DeviceID = &deviceID.String
	}
	if sessionID.Valid {
		fix.TrackingSessionID = &sessionID.String
	}
	if accuracy.Valid {
		fix.Accuracy = &accuracy.Float64
	}
	if altitude.Valid {
		fix.Altitude = &altitude.Float64
	}
	if speed.Valid {
		fix.Speed = &speed.Float64
	}
	return fix, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
