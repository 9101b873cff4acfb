package services

import (
	"math"

	"github.com/safetrail/server/pkg/config"
)

// Scorer converts per-device sighting statistics into a suspicion score.
//
// The score grows linearly with the number of distinct locations a device
// was seen at and only logarithmically with raw sighting volume: a home
// router scanned every few seconds stays low, a tracker that shows up in a
// handful of different places climbs fast. The location weight must exceed
// the sighting weight; config.Load enforces this.
type Scorer struct {
	locationWeight float64
	sightingWeight float64
	threshold      float64
}

// NewScorer creates a scorer from the scoring policy configuration.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{
		locationWeight: cfg.LocationWeight,
		sightingWeight: cfg.SightingWeight,
		threshold:      cfg.SuspicionThreshold,
	}
}

// Score returns the suspicion score for the given statistics. Non-negative,
// unbounded, strictly increasing in both inputs.
func (s *Scorer) Score(totalSightings, distinctLocationCount int) float64 {
	return float64(distinctLocationCount)*s.locationWeight +
		math.Log(1+float64(totalSightings))*s.sightingWeight
}

// IsSuspicious classifies a score. A device seen at a single location is
// never flagged, however often it was scanned.
func (s *Scorer) IsSuspicious(score float64, distinctLocationCount int) bool {
	return score > s.threshold && distinctLocationCount >= 2
}
