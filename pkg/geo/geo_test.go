package geo_test

import (
	"math"
	"testing"

	"github.com/safetrail/server/pkg/geo"
	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, geo.HaversineMeters(6.5244, 3.3792, 6.5244, 3.3792))
}

func TestHaversineMeters_SmallOffsetAtEquator(t *testing.T) {
	// 0.001 degrees of longitude at the equator is ~111.195 meters.
	got := geo.HaversineMeters(0, 0, 0, 0.001)
	expected := 2 * math.Pi * 6371000.0 / 360.0 * 0.001

	assert.InEpsilon(t, expected, got, 0.01)
}

func TestHaversineMeters_KnownCityPair(t *testing.T) {
	// Lagos to Ibadan, roughly 114 km.
	got := geo.HaversineMeters(6.5244, 3.3792, 7.3775, 3.9470)
	assert.InDelta(t, 113000, got, 5000)
}

func TestIsFiniteCoordinate(t *testing.T) {
	assert.True(t, geo.IsFiniteCoordinate(6.5244, 3.3792))
	assert.True(t, geo.IsFiniteCoordinate(-90, 180))

	assert.False(t, geo.IsFiniteCoordinate(math.NaN(), 3.3792))
	assert.False(t, geo.IsFiniteCoordinate(6.5244, math.Inf(1)))
	assert.False(t, geo.IsFiniteCoordinate(91, 0))
	assert.False(t, geo.IsFiniteCoordinate(0, -181))
}

func TestEstimateDistanceFromRSSI(t *testing.T) {
	// At the assumed one-meter power the estimate is one meter.
	assert.InDelta(t, 1.0, geo.EstimateDistanceFromRSSI(-59), 0.001)

	// Weaker signal means farther away.
	near := geo.EstimateDistanceFromRSSI(-60)
	far := geo.EstimateDistanceFromRSSI(-80)
	assert.Greater(t, far, near)
}
