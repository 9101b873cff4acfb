package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/safetrail/server/internal/domain/entities"
	"github.com/safetrail/server/internal/domain/repositories"
)

// OverlapFilters narrow the correlator output after merging. Filtering is
// post-processing: the merge itself always sees every device.
type OverlapFilters struct {
	Kind        *entities.DeviceKind
	HideTrusted bool
}

// OverlapResult is the correlator output. Per-session fetch failures are
// reported alongside the devices from the sessions that did succeed.
type OverlapResult struct {
	Devices       []*entities.OverlapDevice `json:"devices"`
	SessionErrors map[string]string         `json:"session_errors,omitempty"`
}

// OverlapService finds devices that appear across multiple tracking
// sessions. A device following the user between materially different places
// and times is the strongest stalking signal the product surfaces.
type OverlapService struct {
	fixes    repositories.FixRepository
	sessions repositories.SessionRepository
	trust    repositories.TrustRepository
}

// NewOverlapService creates a new session-overlap correlator.
func NewOverlapService(
	fixes repositories.FixRepository,
	sessions repositories.SessionRepository,
	trust repositories.TrustRepository,
) *OverlapService {
	return &OverlapService{
		fixes:    fixes,
		sessions: sessions,
		trust:    trust,
	}
}

// sessionDevices is the per-session grouping produced by one fetch branch.
type sessionDevices struct {
	sessionID string
	counts    map[entities.TrustKey]int
	names     map[entities.TrustKey]string
}

// Correlate computes which devices appear in more than one of the selected
// sessions. The correlator works for any session count >= 1; requiring two
// or more selections is the caller's policy. Per-session fetches run
// concurrently and fail independently: one broken session never hides the
// overlap visible in the others.
func (s *OverlapService) Correlate(
	ctx context.Context,
	userID string,
	sessionIDs []string,
	filters OverlapFilters,
) (*OverlapResult, error) {
	result := &OverlapResult{Devices: []*entities.OverlapDevice{}}
	if len(sessionIDs) == 0 {
		return result, nil
	}

	sessions, err := s.sessions.GetByIDs(ctx, userID, sessionIDs)
	if err != nil {
		return nil, err
	}
	sessionByID := make(map[string]*entities.TrackingSession, len(sessions))
	for _, session := range sessions {
		sessionByID[session.ID] = session
	}

	trustSet, err := s.trust.GetSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		perGroup []sessionDevices
		failures = map[string]string{}
	)

	for _, sessionID := range sessionIDs {
		session, ok := sessionByID[sessionID]
		if !ok {
			failures[sessionID] = "session not found"
			continue
		}

		wg.Add(1)
		go func(session *entities.TrackingSession) {
			defer wg.Done()

			grouped, err := s.fetchSessionDevices(ctx, userID, session)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[session.ID] = err.Error()
				return
			}
			perGroup = append(perGroup, *grouped)
		}(session)
	}
	wg.Wait()

	merged := map[entities.TrustKey]*entities.OverlapDevice{}
	for _, group := range perGroup {
		session := sessionByID[group.sessionID]
		for key, count := range group.counts {
			device, ok := merged[key]
			if !ok {
				device = &entities.OverlapDevice{
					Kind:             key.Kind,
					Identifier:       key.Identifier,
					PerSessionCounts: map[string]int{},
					SessionLabels:    map[string]string{},
					IsTrusted:        trustSet.Contains(key.Kind, key.Identifier),
				}
				merged[key] = device
			}
			device.PerSessionCounts[group.sessionID] = count
			device.SessionLabels[group.sessionID] = session.Label()
			device.TotalCount += count
			device.SessionCount = len(device.PerSessionCounts)
			if name := group.names[key]; name != "" && device.DisplayName == "" {
				device.DisplayName = name
			}
		}
	}

	devices := make([]*entities.OverlapDevice, 0, len(merged))
	for _, device := range merged {
		if device.SessionCount == 0 {
			continue
		}
		if filters.Kind != nil && device.Kind != *filters.Kind {
			continue
		}
		if filters.HideTrusted && device.IsTrusted {
			continue
		}
		devices = append(devices, device)
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].SessionCount != devices[j].SessionCount {
			return devices[i].SessionCount > devices[j].SessionCount
		}
		return devices[i].TotalCount > devices[j].TotalCount
	})

	result.Devices = devices
	if len(failures) > 0 {
		result.SessionErrors = failures
	}
	return result, nil
}

// fetchSessionDevices groups one session's sightings by device. Repeated
// sightings inside a session count once toward session membership but
// accumulate into the per-session count.
func (s *OverlapService) fetchSessionDevices(
	ctx context.Context,
	userID string,
	session *entities.TrackingSession,
) (*sessionDevices, error) {
	timeRange := repositories.TimeRange{From: session.StartTime, To: time.Now()}
	if session.EndTime != nil {
		timeRange.To = *session.EndTime
	}

	fixes, err := s.fixes.QueryFixes(ctx, userID, repositories.FixScope{TrackingSessionID: session.ID}, timeRange)
	if err != nil {
		return nil, err
	}

	grouped := &sessionDevices{
		sessionID: session.ID,
		counts:    map[entities.TrustKey]int{},
		names:     map[entities.TrustKey]string{},
	}
	if len(fixes) == 0 {
		return grouped, nil
	}

	fixIDs := make([]string, 0, len(fixes))
	for _, fix := range fixes {
		fixIDs = append(fixIDs, fix.ID)
	}

	sightings, err := s.fixes.QuerySightings(ctx, fixIDs, nil)
	if err != nil {
		return nil, err
	}

	for _, sighting := range sightings {
		key := entities.TrustKey{Kind: sighting.Kind, Identifier: sighting.Identifier}
		grouped.counts[key]++
		if sighting.DisplayName != "" {
			grouped.names[key] = sighting.DisplayName
		}
	}

	return grouped, nil
}
