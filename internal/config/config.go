// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fundkeep/fundkeep/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir string // Base directory for the sqlite databases (always absolute)
	// OrgID identifies the tenant this server instance serves. Multi-tenant
	// deployments run one instance per organization; every repository query
	// is scoped by this value.
	OrgID string
	// MaterializerSchedule is the cron expression for the recurring
	// transaction materializer job.
	MaterializerSchedule string
	LogLevel             string
	Port                 int
	DevMode              bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory, resolve to an absolute path and make sure
	// it exists before any database is opened.
	dataDir := getEnv("FUNDKEEP_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		OrgID:                getEnv("FUNDKEEP_ORG_ID", "default"),
		MaterializerSchedule: getEnv("MATERIALIZER_SCHEDULE", "@daily"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnvAsInt("PORT", 8080),
		DevMode:              getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings overlays configuration with values from the settings
// database. Settings values take precedence over environment variables so
// runtime changes survive without a restart.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	schedule, err := settingsRepo.Get("materializer_schedule")
	if err != nil {
		return fmt.Errorf("failed to get materializer_schedule from settings: %w", err)
	}
	if schedule != nil && *schedule != "" {
		c.MaterializerSchedule = *schedule
	}

	logLevel, err := settingsRepo.Get("log_level")
	if err != nil {
		return fmt.Errorf("failed to get log_level from settings: %w", err)
	}
	if logLevel != nil && *logLevel != "" {
		c.LogLevel = *logLevel
	}

	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.OrgID == "" {
		return fmt.Errorf("FUNDKEEP_ORG_ID must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
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
