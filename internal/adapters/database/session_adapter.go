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

// SessionAdapter implements the SessionRepository interface
type SessionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSessionAdapter creates a new tracking session adapter
func NewSessionAdapter(client *postgres.Client) repositories.SessionRepository {
	return &SessionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new session.
func (a *SessionAdapter) Create(ctx context.Context, session *entities.TrackingSession) error {
	record := goqu.Record{
		"id":               session.ID,
		"user_id":          session.UserID,
		"name":             sql.NullString{String: session.Name, Valid: session.Name != ""},
		"start_time":       session.StartTime,
		"end_time":         nullableTime(session.EndTime),
		"quality":          nullableQuality(session.Quality),
		"last_activity_at": session.LastActivityAt,
	}

	query, args, err := a.db.Insert("tracking_sessions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build session insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create session", err)
	}

	return nil
}

// GetByID retrieves a session owned by the user.
func (a *SessionAdapter) GetByID(ctx context.Context, userID, id string) (*entities.TrackingSession, error) {
	query, args, err := a.sessionSelect().
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build session query", err)
	}

	session, err := scanSession(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("session with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get session", err)
	}

	return session, nil
}

// GetByIDs retrieves multiple sessions owned by the user.
func (a *SessionAdapter) GetByIDs(ctx context.Context, userID string, ids []string) ([]*entities.TrackingSession, error) {
	if len(ids) == 0 {
		return []*entities.TrackingSession{}, nil
	}

	query, args, err := a.sessionSelect().
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").In(ids)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build session query", err)
	}

	return a.querySessions(ctx, query, args)
}

// ListByUser retrieves the user's sessions, newest first.
func (a *SessionAdapter) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.TrackingSession, error) {
	ds := a.sessionSelect().
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("start_time").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build session list query", err)
	}

	return a.querySessions(ctx, query, args)
}

// Update applies the user-editable fields.
func (a *SessionAdapter) Update(ctx context.Context, userID, id string, update repositories.SessionUpdate) error {
	record := goqu.Record{}
	if update.Name != nil {
		record["name"] = sql.NullString{String: *update.Name, Valid: *update.Name != ""}
	}
	if update.Quality != nil {
		record["quality"] = sql.NullString{String: string(*update.Quality), Valid: true}
	}
	if update.EndTime != nil {
		record["end_time"] = *update.EndTime
	}
	if len(record) == 0 {
		return nil
	}

	query, args, err := a.db.Update("tracking_sessions").
		Set(record).
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build session update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update session", err)
	}

	return requireRowAffected(result, fmt.Sprintf("session with id %s not found", id))
}

// TouchActivity updates the session's last-activity timestamp.
func (a *SessionAdapter) TouchActivity(ctx context.Context, id string, at time.Time) error {
	query, args, err := a.db.Update("tracking_sessions").
		Set(goqu.Record{"last_activity_at": at}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build session touch query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to touch session activity", err)
	}

	return nil
}

// Delete removes a session; fixes and sightings go with it via FK cascade.
func (a *SessionAdapter) Delete(ctx context.Context, userID, id string) error {
	query, args, err := a.db.Delete("tracking_sessions").
		Where(goqu.C("user_id").Eq(userID), goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build session delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}

	return requireRowAffected(result, fmt.Sprintf("session with id %s not found", id))
}

func (a *SessionAdapter) sessionSelect() *goqu.SelectDataset {
	return a.db.From("tracking_sessions").
		Select("id", "user_id", "name", "start_time", "end_time", "quality", "last_activity_at")
}

func (a *SessionAdapter) querySessions(ctx context.Context, query string, args []interface{}) ([]*entities.TrackingSession, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query sessions", err)
	}
	defer rows.Close()

	sessions := []*entities.TrackingSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan session", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating sessions", err)
	}

	return sessions, nil
}

func scanSession(row rowScanner) (*entities.TrackingSession, error) {
	session := &entities.TrackingSession{}
	var name, quality sql.NullString
	var endTime sql.NullTime
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&name,
		&session.StartTime,
		&endTime,
		&quality,
		&session.LastActivityAt,
	)
	if err != nil {
		return nil, err
	}
	session.Name = name.String
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	if quality.Valid {
		q := entities.SessionQuality(quality.String)
		session.Quality = &q
	}
	return session, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableQuality(q *entities.SessionQuality) sql.NullString {
	if q == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*q), Valid: true}
}

func requireRowAffected(result sql.Result, notFoundMessage string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(notFoundMessage)
	}
	return nil
}
