package services

import (
	"context"
	"testing"

	"github.com/safetrail/server/internal/domain/entities"
	apperrors "github.com/safetrail/server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("start creates an open session", func(t *testing.T) {
		svc := NewSessionService(newFakeSessionRepo())

		session, err := svc.Start(ctx, "user-1", "Morning walk")
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, "Morning walk", session.Name)
		assert.Nil(t, session.EndTime)
		assert.False(t, session.StartTime.IsZero())
	})

	t.Run("stop closes the session once", func(t *testing.T) {
		svc := NewSessionService(newFakeSessionRepo())
		session, err := svc.Start(ctx, "user-1", "")
		require.NoError(t, err)

		stopped, err := svc.Stop(ctx, "user-1", session.ID)
		require.NoError(t, err)
		require.NotNil(t, stopped.EndTime)

		_, err = svc.Stop(ctx, "user-1", session.ID)
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	})

	t.Run("quality validated before persisting", func(t *testing.T) {
		repo := newFakeSessionRepo()
		svc := NewSessionService(repo)
		session, err := svc.Start(ctx, "user-1", "")
		require.NoError(t, err)

		err = svc.SetQuality(ctx, "user-1", session.ID, entities.SessionQuality("AMAZING"))
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

		require.NoError(t, svc.SetQuality(ctx, "user-1", session.ID, entities.SessionQualityGood))
		got, err := svc.Get(ctx, "user-1", session.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Quality)
		assert.Equal(t, entities.SessionQualityGood, *got.Quality)
	})

	t.Run("other users cannot touch the session", func(t *testing.T) {
		svc := NewSessionService(newFakeSessionRepo())
		session, err := svc.Start(ctx, "user-1", "")
		require.NoError(t, err)

		_, err = svc.Get(ctx, "user-2", session.ID)
		assert.True(t, apperrors.IsNotFound(err))

		err = svc.Delete(ctx, "user-2", session.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("rename persists", func(t *testing.T) {
		svc := NewSessionService(newFakeSessionRepo())
		session, err := svc.Start(ctx, "user-1", "old")
		require.NoError(t, err)

		require.NoError(t, svc.Rename(ctx, "user-1", session.ID, "new"))
		got, err := svc.Get(ctx, "user-1", session.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
	})
}
