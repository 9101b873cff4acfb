package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalytics() (*AnalyticsService, *fakeFixRepo, *fakeAlertRepo, *fakeTrustRepo) {
	fixes := &fakeFixRepo{}
	alerts := &fakeAlertRepo{}
	trust := newFakeTrustRepo()
	cfg := testScoringConfig()
	svc := NewAnalyticsService(fixes, alerts, trust, NewScorer(cfg), cfg)
	return svc, fixes, alerts, trust
}

func storedFix(user, id string, lat, lng float64, ts time.Time, sightings ...*entities.RadioSighting) *entities.LocationFix {
	for _, s := range sightings {
		s.LocationID = id
	}
	return &entities.LocationFix{
		ID:        id,
		UserID:    user,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
		Sightings: sightings,
	}
}

func wifiSighting(identifier, name string, rssi int) *entities.RadioSighting {
	return &entities.RadioSighting{
		Kind:        entities.DeviceKindWifi,
		Identifier:  identifier,
		DisplayName: name,
		RSSI:        rssi,
	}
}

func TestAnalyticsService_GetSuspiciousDevices(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rangeAll := repositories.TimeRange{From: base.Add(-time.Hour), To: base.Add(30 * 24 * time.Hour)}

	t.Run("empty history yields empty result", func(t *testing.T) {
		svc, _, _, _ := newTestAnalytics()
		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		assert.Empty(t, aggregates)
	})

	t.Run("aggregates per device across fixes", func(t *testing.T) {
		svc, fixes, _, _ := newTestAnalytics()
		fixes.fixes = []*entities.LocationFix{
			storedFix("user-1", "f1", 6.50, 3.30, base,
				wifiSighting("AA:AA", "CafeNet", -55),
				wifiSighting("AA:AA", "CafeNet", -58)),
			storedFix("user-1", "f2", 6.60, 3.40, base.Add(time.Hour),
				wifiSighting("AA:AA", "", -62)),
			storedFix("user-1", "f3", 6.70, 3.50, base.Add(2*time.Hour),
				wifiSighting("BB:BB", "HomeNet", -40)),
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)

		follower := aggregates[0]
		assert.Equal(t, "AA:AA", follower.Identifier)
		assert.Equal(t, 3, follower.TotalSightings)
		assert.Equal(t, 2, follower.DistinctLocationCount)
		assert.Equal(t, base, follower.FirstSeenAt)
		assert.Equal(t, base.Add(time.Hour), follower.LastSeenAt)
		assert.Equal(t, "CafeNet", follower.DisplayName)

		stationary := aggregates[1]
		assert.Equal(t, "BB:BB", stationary.Identifier)
		assert.Equal(t, 1, stationary.DistinctLocationCount)
		assert.False(t, stationary.IsSuspicious)
	})

	t.Run("multi location device above threshold flagged", func(t *testing.T) {
		svc, fixes, _, _ := newTestAnalytics()
		for i := 0; i < 4; i++ {
			fixes.fixes = append(fixes.fixes, storedFix(
				"user-1", fmt.Sprintf("f%d", i), 6.5+float64(i)*0.01, 3.3, base.Add(time.Duration(i)*time.Hour),
				wifiSighting("AA:AA", "", -60),
			))
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 1)
		assert.True(t, aggregates[0].IsSuspicious)
		assert.Greater(t, aggregates[0].SuspicionScore, 5.0)
	})

	t.Run("trusted devices listed but never suspicious", func(t *testing.T) {
		svc, fixes, _, trust := newTestAnalytics()
		require.NoError(t, trust.Set(ctx, "user-1", entities.DeviceKindWifi, "AA:AA", true))
		for i := 0; i < 4; i++ {
			fixes.fixes = append(fixes.fixes, storedFix(
				"user-1", fmt.Sprintf("f%d", i), 6.5+float64(i)*0.01, 3.3, base.Add(time.Duration(i)*time.Hour),
				wifiSighting("AA:AA", "", -60),
			))
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 1)
		assert.True(t, aggregates[0].IsTrusted)
		assert.False(t, aggregates[0].IsSuspicious)
		assert.Greater(t, aggregates[0].SuspicionScore, 5.0)
	})

	t.Run("sightings near an alert flagged", func(t *testing.T) {
		svc, fixes, alerts, _ := newTestAnalytics()
		alerts.alerts = []*entities.Alert{{
			ID: "a1", UserID: "user-1", Status: entities.AlertStatusActive,
			CreatedAt: base.Add(10 * time.Minute),
		}}
		fixes.fixes = []*entities.LocationFix{
			storedFix("user-1", "f1", 6.5, 3.3, base, wifiSighting("AA:AA", "", -60)),
			storedFix("user-1", "f2", 6.6, 3.4, base.Add(3*time.Hour), wifiSighting("BB:BB", "", -60)),
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)

		byID := map[string]*entities.DeviceAggregate{}
		for _, agg := range aggregates {
			byID[agg.Identifier] = agg
		}
		assert.True(t, byID["AA:AA"].SeenNearAlert)
		assert.False(t, byID["BB:BB"].SeenNearAlert)
	})

	t.Run("ordered by score then volume, truncated to limit", func(t *testing.T) {
		svc, fixes, _, _ := newTestAnalytics()
		// Three devices with distinct profiles.
		for i := 0; i < 3; i++ {
			fixes.fixes = append(fixes.fixes, storedFix(
				"user-1", fmt.Sprintf("f%d", i), 6.5+float64(i)*0.01, 3.3, base.Add(time.Duration(i)*time.Hour),
				wifiSighting("ROAMER", "", -60),
				wifiSighting("STATIC", "", -60),
			))
		}
		fixes.fixes = append(fixes.fixes, storedFix(
			"user-1", "f9", 6.9, 3.9, base.Add(9*time.Hour),
			wifiSighting("ROAMER", "", -60),
			wifiSighting("ONCE", "", -60),
		))

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 2)
		require.NoError(t, err)
		require.Len(t, aggregates, 2)
		assert.Equal(t, "ROAMER", aggregates[0].Identifier)
		assert.Equal(t, "STATIC", aggregates[1].Identifier)
	})

	t.Run("long lived broadly seen device gets environment label", func(t *testing.T) {
		svc, fixes, _, _ := newTestAnalytics()
		for i := 0; i < 12; i++ {
			fixes.fixes = append(fixes.fixes, storedFix(
				"user-1", fmt.Sprintf("f%d", i), 6.5+float64(i)*0.01, 3.3,
				base.Add(time.Duration(i)*24*time.Hour),
				wifiSighting("AA:AA", "", -60),
			))
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 1)
		assert.NotEmpty(t, aggregates[0].TrustedSourceLabel)
	})

	t.Run("rssi distance enrichment populated", func(t *testing.T) {
		svc, fixes, _, _ := newTestAnalytics()
		fixes.fixes = []*entities.LocationFix{
			storedFix("user-1", "f1", 6.5, 3.3, base,
				wifiSighting("AA:AA", "", -50),
				wifiSighting("AA:AA", "", -80)),
		}

		aggregates, err := svc.GetSuspiciousDevices(ctx, "user-1", repositories.FixScope{}, rangeAll, 0)
		require.NoError(t, err)
		require.Len(t, aggregates, 1)
		require.NotNil(t, aggregates[0].AvgDistanceMeters)
		require.NotNil(t, aggregates[0].MinDistanceMeters)
		assert.Less(t, *aggregates[0].MinDistanceMeters, *aggregates[0].AvgDistanceMeters)
	})
}
