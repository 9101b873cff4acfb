package services

import (
	"testing"

	"github.com/safetrail/server/pkg/config"
	"github.com/stretchr/testify/assert"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		LocationWeight:      2.0,
		SightingWeight:      0.5,
		SuspicionThreshold:  5.0,
		NearAlertWindowMins: 30,
		DefaultLimit:        20,
	}
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(testScoringConfig())

	t.Run("zero inputs give zero score", func(t *testing.T) {
		assert.Zero(t, scorer.Score(0, 0))
	})

	t.Run("strictly increasing in distinct locations", func(t *testing.T) {
		prev := scorer.Score(10, 1)
		for locations := 2; locations <= 6; locations++ {
			score := scorer.Score(10, locations)
			assert.Greater(t, score, prev)
			prev = score
		}
	})

	t.Run("strictly increasing in total sightings", func(t *testing.T) {
		prev := scorer.Score(1, 3)
		for _, total := range []int{2, 10, 100, 1000} {
			score := scorer.Score(total, 3)
			assert.Greater(t, score, prev)
			prev = score
		}
	})

	t.Run("locations dominate raw volume", func(t *testing.T) {
		// A device at three places with a handful of sightings outranks a
		// device scanned thousands of times at one place.
		roamer := scorer.Score(6, 3)
		homeRouter := scorer.Score(5000, 1)
		assert.Greater(t, roamer, homeRouter)
	})
}

func TestScorer_IsSuspicious(t *testing.T) {
	scorer := NewScorer(testScoringConfig())

	t.Run("single location never suspicious regardless of volume", func(t *testing.T) {
		for _, total := range []int{1, 10, 10000} {
			score := scorer.Score(total, 1)
			assert.False(t, scorer.IsSuspicious(score, 1), "total=%d score=%f", total, score)
		}
	})

	t.Run("multi location device above threshold is suspicious", func(t *testing.T) {
		score := scorer.Score(20, 4)
		assert.True(t, scorer.IsSuspicious(score, 4))
	})

	t.Run("score at or below threshold is not suspicious", func(t *testing.T) {
		assert.False(t, scorer.IsSuspicious(5.0, 3))
		assert.False(t, scorer.IsSuspicious(4.2, 2))
	})
}
