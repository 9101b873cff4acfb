package services

import (
	"context"
	"testing"

	"github.com/safetrail/server/internal/domain/entities"
	apperrors "github.com/safetrail/server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrustService_SetTrusted(t *testing.T) {
	ctx := context.Background()
	svc := NewTrustService(newFakeTrustRepo())

	t.Run("trust then untrust round trip", func(t *testing.T) {
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindWifi, "AA:BB", true))

		trusted, err := svc.IsTrusted(ctx, "user-1", entities.DeviceKindWifi, "AA:BB")
		require.NoError(t, err)
		assert.True(t, trusted)

		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindWifi, "AA:BB", false))

		trusted, err = svc.IsTrusted(ctx, "user-1", entities.DeviceKindWifi, "AA:BB")
		require.NoError(t, err)
		assert.False(t, trusted)
	})

	t.Run("idempotent in both directions", func(t *testing.T) {
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindBle, "11:22", true))
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindBle, "11:22", true))
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindBle, "11:22", false))
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindBle, "11:22", false))
	})

	t.Run("trust is scoped per user", func(t *testing.T) {
		require.NoError(t, svc.SetTrusted(ctx, "user-1", entities.DeviceKindWifi, "CC:DD", true))

		trusted, err := svc.IsTrusted(ctx, "user-2", entities.DeviceKindWifi, "CC:DD")
		require.NoError(t, err)
		assert.False(t, trusted)
	})

	t.Run("rejects unknown kind and empty identifier", func(t *testing.T) {
		err := svc.SetTrusted(ctx, "user-1", entities.DeviceKind("lte"), "AA:BB", true)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))

		err = svc.SetTrusted(ctx, "user-1", entities.DeviceKindWifi, "", true)
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
	})
}
