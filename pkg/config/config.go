package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OSRM     OSRMConfig
	Scoring  ScoringConfig
	Push     PushConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OSRMConfig holds the map-matching service configuration
type OSRMConfig struct {
	BaseURL string
	Profile string
}

// ScoringConfig holds the tunable suspicion scoring policy. The weights and
// threshold are policy, not contract; the location weight must stay above
// the sighting weight so appearing in more places always dominates raw
// sighting volume.
type ScoringConfig struct {
	LocationWeight      float64
	SightingWeight      float64
	SuspicionThreshold  float64
	NearAlertWindowMins int
	DefaultLimit        int
}

// PushConfig holds push notification configuration
type PushConfig struct {
	FCMEndpoint string
	FCMAPIKey   string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "safetrail"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OSRM: OSRMConfig{
			BaseURL: getEnv("OSRM_URL", ""),
			Profile: getEnv("OSRM_PROFILE", "foot"),
		},
		Scoring: ScoringConfig{
			LocationWeight:      getEnvAsFloat("SCORING_LOCATION_WEIGHT", 2.0),
			SightingWeight:      getEnvAsFloat("SCORING_SIGHTING_WEIGHT", 0.5),
			SuspicionThreshold:  getEnvAsFloat("SCORING_SUSPICION_THRESHOLD", 5.0),
			NearAlertWindowMins: getEnvAsInt("SCORING_NEAR_ALERT_WINDOW_MINS", 30),
			DefaultLimit:        getEnvAsInt("SCORING_DEFAULT_LIMIT", 20),
		},
		Push: PushConfig{
			FCMEndpoint: getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			FCMAPIKey:   getEnv("FCM_API_KEY", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "safetrail-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}

	if cfg.Scoring.LocationWeight <= cfg.Scoring.SightingWeight {
		return nil, fmt.Errorf(
			"SCORING_LOCATION_WEIGHT (%v) must be greater than SCORING_SIGHTING_WEIGHT (%v)",
			cfg.Scoring.LocationWeight, cfg.Scoring.SightingWeight,
		)
	}

	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
