package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultDailyPointCap is the maximum currency a user may earn per calendar day.
const DefaultDailyPointCap = 50.0

// Config holds all configuration for the bot
type Config struct {
	DiscordToken  string
	DatabaseDSN   string
	SentryDSN     string
	LogLevel      string
	DailyPointCap float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists; it is optional and plain environment
	// variables win without one
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DailyPointCap: DefaultDailyPointCap,
	}

	if config.DiscordToken == "" {
		return nil, &ConfigError{Field: "DISCORD_TOKEN", Message: "DISCORD_TOKEN is required"}
	}

	if config.DatabaseDSN == "" {
		return nil, &ConfigError{Field: "DATABASE_DSN", Message: "DATABASE_DSN is required"}
	}

	if raw := os.Getenv("DAILY_POINT_CAP"); raw != "" {
		cap, err := strconv.ParseFloat(raw, 64)
		if err != nil || cap <= 0 {
			return nil, &ConfigError{Field: "DAILY_POINT_CAP", Message: fmt.Sprintf("DAILY_POINT_CAP must be a positive number, got %q", raw)}
		}
		config.DailyPointCap = cap
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
