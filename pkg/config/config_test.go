package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("SCORING_LOCATION_WEIGHT")
	os.Unsetenv("SCORING_SIGHTING_WEIGHT")
	os.Unsetenv("OSRM_URL")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Scoring.LocationWeight)
	assert.Equal(t, 0.5, cfg.Scoring.SightingWeight)
	assert.Equal(t, 30, cfg.Scoring.NearAlertWindowMins)
	assert.Equal(t, 20, cfg.Scoring.DefaultLimit)
	assert.Equal(t, "http://localhost:5000", cfg.OSRM.BaseURL)
	assert.Equal(t, "foot", cfg.OSRM.Profile)
	assert.Equal(t, "safetrail", cfg.Database.Database)
}

func TestLoad_ScoringOverrides(t *testing.T) {
	os.Setenv("SCORING_LOCATION_WEIGHT", "3.5")
	os.Setenv("SCORING_SIGHTING_WEIGHT", "1.0")
	os.Setenv("SCORING_SUSPICION_THRESHOLD", "8")
	defer func() {
		os.Unsetenv("SCORING_LOCATION_WEIGHT")
		os.Unsetenv("SCORING_SIGHTING_WEIGHT")
		os.Unsetenv("SCORING_SUSPICION_THRESHOLD")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 3.5, cfg.Scoring.LocationWeight)
	assert.Equal(t, 1.0, cfg.Scoring.SightingWeight)
	assert.Equal(t, 8.0, cfg.Scoring.SuspicionThreshold)
}

func TestLoad_RejectsInvertedScoringWeights(t *testing.T) {
	os.Setenv("SCORING_LOCATION_WEIGHT", "0.5")
	os.Setenv("SCORING_SIGHTING_WEIGHT", "2.0")
	defer func() {
		os.Unsetenv("SCORING_LOCATION_WEIGHT")
		os.Unsetenv("SCORING_SIGHTING_WEIGHT")
	}()

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "safetrail",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=postgres password=secret dbname=safetrail sslmode=disable",
		cfg.DatabaseDSN(),
	)
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
