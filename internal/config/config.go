package config

import (
	"os"
	"strconv"
	"time"

	"github.com/relayline/callback-service/internal/scheduling"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Port string
	Env  string

	// API auth. Empty secret disables bearer auth on /api routes.
	APIAuthSecret string

	// External CRM (lead store)
	CRMBaseURL           string
	CRMAPIKey            string
	CRMRequestsPerSecond float64

	// External calendar availability provider (optional)
	CalendarBaseURL string
	CalendarAPIKey  string

	// Twilio Lookup for phone validation during contact sync (optional)
	TwilioAccountSID string
	TwilioAuthToken  string

	// Redis pattern cache (optional)
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Pub/Sub scheduling events (optional, disabled when project is empty)
	PubSubProjectID string
	PubSubTopic     string
	PubSubPubID     string

	// Scheduling engine configuration
	Scheduling scheduling.Config
}

// LoadFromEnv loads the application configuration from environment variables
func LoadFromEnv() *AppConfig {
	return &AppConfig{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("LOG_ENV", "development"),

		APIAuthSecret: getEnvOrDefault("API_AUTH_SECRET", ""),

		CRMBaseURL:           getEnvOrDefault("CRM_BASE_URL", ""),
		CRMAPIKey:            getEnvOrDefault("CRM_API_KEY", ""),
		CRMRequestsPerSecond: getEnvFloatOrDefault("CRM_REQUESTS_PER_SECOND", 5),

		CalendarBaseURL: getEnvOrDefault("CALENDAR_BASE_URL", ""),
		CalendarAPIKey:  getEnvOrDefault("CALENDAR_API_KEY", ""),

		TwilioAccountSID: getEnvOrDefault("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnvOrDefault("TWILIO_AUTH_TOKEN", ""),

		RedisEnabled:  getEnvBoolOrDefault("REDIS_ENABLED", false),
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		PubSubProjectID: getEnvOrDefault("PUBSUB_PROJECT_ID", ""),
		PubSubTopic:     getEnvOrDefault("PUBSUB_TOPIC", "callback-scheduling-events"),
		PubSubPubID:     getEnvOrDefault("PUBSUB_PUB_ID", ""),

		Scheduling: loadSchedulingConfig(),
	}
}

// loadSchedulingConfig applies environment overrides on top of the engine
// defaults. Deployments tune the empirically-chosen penalty constants
// here; the defaults match production.
func loadSchedulingConfig() scheduling.Config {
	cfg := scheduling.DefaultConfig()

	cfg.BusinessHourStart = getEnvIntOrDefault("BUSINESS_HOUR_START", cfg.BusinessHourStart)
	cfg.BusinessHourEnd = getEnvIntOrDefault("BUSINESS_HOUR_END", cfg.BusinessHourEnd)
	cfg.MinScoreFloor = getEnvFloatOrDefault("MIN_SCORE_FLOOR", cfg.MinScoreFloor)
	cfg.MaxCallbacksPerDay = getEnvIntOrDefault("MAX_CALLBACKS_PER_DAY", cfg.MaxCallbacksPerDay)
	cfg.PredictHorizonDays = getEnvIntOrDefault("PREDICT_HORIZON_DAYS", cfg.PredictHorizonDays)
	cfg.ScheduleHorizonDays = getEnvIntOrDefault("SCHEDULE_HORIZON_DAYS", cfg.ScheduleHorizonDays)
	cfg.MaxHorizonDays = getEnvIntOrDefault("MAX_HORIZON_DAYS", cfg.MaxHorizonDays)
	cfg.OutsideHoursPenalty = getEnvFloatOrDefault("OUTSIDE_HOURS_PENALTY", cfg.OutsideHoursPenalty)
	cfg.RecencyDecay = getEnvFloatOrDefault("RECENCY_DECAY", cfg.RecencyDecay)

	if tz := os.Getenv("BUSINESS_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.Base().Warn("invalid BUSINESS_TIMEZONE, using local time",
				zap.String("timezone", tz), zap.Error(err))
		} else {
			cfg.Timezone = loc
		}
	}

	return cfg
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault gets environment variable as int or returns default value
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloatOrDefault gets environment variable as float or returns default value
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault gets environment variable as bool or returns default value
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
