package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
	"github.com/safetrail/server/pkg/config"
	"github.com/safetrail/server/pkg/geo"
)

// Thresholds for the informational "part of your environment" annotation: a
// device the user's own history has seen this broadly, for this long, is
// most likely theirs or a fixture of places they frequent.
const (
	environmentMinLocations = 10
	environmentMinSpan      = 7 * 24 * time.Hour
)

const environmentLabel = "frequently seen in your environment"

// AnalyticsService computes per-device co-occurrence aggregates and
// suspicion scores over a user's sighting history. All computation is
// request-scoped; nothing is cached between calls.
type AnalyticsService struct {
	fixes  repositories.FixRepository
	alerts repositories.AlertRepository
	trust  repositories.TrustRepository
	scorer *Scorer

	nearAlertWindow time.Duration
	defaultLimit    int
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	fixes repositories.FixRepository,
	alerts repositories.AlertRepository,
	trust repositories.TrustRepository,
	scorer *Scorer,
	cfg config.ScoringConfig,
) *AnalyticsService {
	return &AnalyticsService{
		fixes:           fixes,
		alerts:          alerts,
		trust:           trust,
		scorer:          scorer,
		nearAlertWindow: time.Duration(cfg.NearAlertWindowMins) * time.Minute,
		defaultLimit:    cfg.DefaultLimit,
	}
}

// GetSuspiciousDevices aggregates the user's radio sightings in the range,
// scores each device, and returns the top entries by score. Trusted devices
// stay in the listing but are never classified suspicious.
func (s *AnalyticsService) GetSuspiciousDevices(
	ctx context.Context,
	userID string,
	scope repositories.FixScope,
	timeRange repositories.TimeRange,
	limit int,
) ([]*entities.DeviceAggregate, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	fixes, err := s.fixes.QueryFixes(ctx, userID, scope, timeRange)
	if err != nil {
		return nil, err
	}
	if len(fixes) == 0 {
		return []*entities.DeviceAggregate{}, nil
	}

	fixByID := make(map[string]*entities.LocationFix, len(fixes))
	fixIDs := make([]string, 0, len(fixes))
	for _, fix := range fixes {
		fixByID[fix.ID] = fix
		fixIDs = append(fixIDs, fix.ID)
	}

	// Sightings, alerts, and the trust snapshot are independent reads;
	// fetch them in parallel and join before aggregating.
	var (
		wg        sync.WaitGroup
		sightings []*entities.RadioSighting
		alerts    []*entities.Alert
		trustSet  entities.TrustSet
		errs      [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		sightings, errs[0] = s.fixes.QuerySightings(ctx, fixIDs, nil)
	}()
	go func() {
		defer wg.Done()
		alerts, errs[1] = s.alerts.QueryAlerts(ctx, userID, timeRange, repositories.AlertDirectionSent)
	}()
	go func() {
		defer wg.Done()
		trustSet, errs[2] = s.trust.GetSet(ctx, userID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	aggregates := s.buildAggregates(sightings, fixByID, alerts, trustSet)

	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].SuspicionScore != aggregates[j].SuspicionScore {
			return aggregates[i].SuspicionScore > aggregates[j].SuspicionScore
		}
		return aggregates[i].TotalSightings > aggregates[j].TotalSightings
	})

	if len(aggregates) > limit {
		aggregates = aggregates[:limit]
	}

	return aggregates, nil
}

type deviceAccumulator struct {
	total       int
	fixIDs      map[string]struct{}
	firstSeen   time.Time
	lastSeen    time.Time
	displayName string
	displaySeen time.Time
	distanceSum float64
	distanceMin float64
	nearAlert   bool
}

func (s *AnalyticsService) buildAggregates(
	sightings []*entities.RadioSighting,
	fixByID map[string]*entities.LocationFix,
	alerts []*entities.Alert,
	trustSet entities.TrustSet,
) []*entities.DeviceAggregate {
	groups := map[entities.TrustKey]*deviceAccumulator{}

	for _, sighting := range sightings {
		fix, ok := fixByID[sighting.LocationID]
		if !ok {
			continue
		}

		key := entities.TrustKey{Kind: sighting.Kind, Identifier: sighting.Identifier}
		acc, ok := groups[key]
		if !ok {
			acc = &deviceAccumulator{
				fixIDs:      map[string]struct{}{},
				firstSeen:   fix.Timestamp,
				lastSeen:    fix.Timestamp,
				distanceMin: -1,
			}
			groups[key] = acc
		}

		acc.total++
		acc.fixIDs[fix.ID] = struct{}{}
		if fix.Timestamp.Before(acc.firstSeen) {
			acc.firstSeen = fix.Timestamp
		}
		if fix.Timestamp.After(acc.lastSeen) {
			acc.lastSeen = fix.Timestamp
		}
		if sighting.DisplayName != "" && (acc.displayName == "" || fix.Timestamp.After(acc.displaySeen)) {
			acc.displayName = sighting.DisplayName
			acc.displaySeen = fix.Timestamp
		}

		distance := geo.EstimateDistanceFromRSSI(sighting.RSSI)
		acc.distanceSum += distance
		if acc.distanceMin < 0 || distance < acc.distanceMin {
			acc.distanceMin = distance
		}

		if !acc.nearAlert && s.nearAnyAlert(fix.Timestamp, alerts) {
			acc.nearAlert = true
		}
	}

	aggregates := make([]*entities.DeviceAggregate, 0, len(groups))
	for key, acc := range groups {
		distinct := len(acc.fixIDs)
		score := s.scorer.Score(acc.total, distinct)
		trusted := trustSet.Contains(key.Kind, key.Identifier)

		aggregate := &entities.DeviceAggregate{
			Kind:                  key.Kind,
			Identifier:            key.Identifier,
			DisplayName:           acc.displayName,
			TotalSightings:        acc.total,
			DistinctLocationCount: distinct,
			FirstSeenAt:           acc.firstSeen,
			LastSeenAt:            acc.lastSeen,
			SuspicionScore:        score,
			IsSuspicious:          !trusted && s.scorer.IsSuspicious(score, distinct),
			SeenNearAlert:         acc.nearAlert,
			IsTrusted:             trusted,
		}

		if distinct >= environmentMinLocations && acc.lastSeen.Sub(acc.firstSeen) >= environmentMinSpan {
			aggregate.TrustedSourceLabel = environmentLabel
		}

		if acc.total > 0 {
			avg := acc.distanceSum / float64(acc.total)
			min := acc.distanceMin
			aggregate.AvgDistanceMeters = &avg
			aggregate.MinDistanceMeters = &min
		}

		aggregates = append(aggregates, aggregate)
	}

	return aggregates
}

func (s *AnalyticsService) nearAnyAlert(ts time.Time, alerts []*entities.Alert) bool {
	for _, alert := range alerts {
		delta := ts.Sub(alert.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= s.nearAlertWindow {
			return true
		}
	}
	return false
}
