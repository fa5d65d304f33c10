package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath   string
	P6BaseURL      string
	P6APIKey       string
	SAPBaseURL     string
	SAPAPIKey      string
	MirrorSchedule string // cron spec for the P6/SAP mirror job
	LogLevel       string
	Port           int
	DevMode        bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvAsInt("ORION_PORT", 8080),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/orion.db"),
		P6BaseURL:      getEnv("P6_BASE_URL", ""),
		P6APIKey:       getEnv("P6_API_KEY", ""),
		SAPBaseURL:     getEnv("SAP_BASE_URL", ""),
		SAPAPIKey:      getEnv("SAP_API_KEY", ""),
		MirrorSchedule: getEnv("MIRROR_SCHEDULE", "@every 15m"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	// P6/SAP credentials are optional: without them the mirror job is not
	// scheduled and the dashboards serve whatever is already mirrored.

	return nil
}

// MirrorEnabled reports whether both source systems are configured.
func (c *Config) MirrorEnabled() bool {
	return c.P6BaseURL != "" && c.SAPBaseURL != ""
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
