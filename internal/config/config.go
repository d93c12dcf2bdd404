package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Closing policy modes
const (
	ClosingPolicySticky  = "sticky"
	ClosingPolicyDerived = "derived"
)

// Storage drivers
const (
	StorageDriverFile     = "file"
	StorageDriverDatabase = "database"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Storage
	StorageDriver string
	StoragePath   string
	DatabaseURL   string

	// Komplek
	KomplekID     string
	ClosingPolicy string

	// Remote dues service
	RemoteDuesURL     string
	RemoteDuesSecret  string
	RemoteDuesTimeout time.Duration

	// Background Workers
	WorkerCount       int
	RolloverInterval  time.Duration
	DirtyPollInterval time.Duration

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string
	AdminEmails  []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StorageDriver:     getEnv("STORAGE_DRIVER", StorageDriverFile),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		KomplekID:         getEnv("KOMPLEK_ID", ""),
		ClosingPolicy:     getEnv("CLOSING_POLICY", ClosingPolicySticky),
		RemoteDuesURL:     strings.TrimRight(getEnv("REMOTE_DUES_URL", ""), "/"),
		RemoteDuesSecret:  getEnv("REMOTE_DUES_SECRET", ""),
		RemoteDuesTimeout: getEnvAsDuration("REMOTE_DUES_TIMEOUT", 10*time.Second),
		WorkerCount:       getEnvAsInt("WORKER_COUNT", 2),
		RolloverInterval:  getEnvAsDuration("ROLLOVER_INTERVAL", 30*time.Second),
		DirtyPollInterval: getEnvAsDuration("DIRTY_POLL_INTERVAL", 5*time.Second),
		AllowedOrigins:    getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", "noreply@komplek.app"),
		AdminEmails:       getEnvAsSlice("ADMIN_EMAILS", nil),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot be defaulted
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverFile:
	case StorageDriverDatabase:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=%s", StorageDriverDatabase)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.ClosingPolicy != ClosingPolicySticky && c.ClosingPolicy != ClosingPolicyDerived {
		return fmt.Errorf("unknown CLOSING_POLICY %q", c.ClosingPolicy)
	}

	if c.RemoteDuesURL != "" && c.KomplekID == "" {
		return fmt.Errorf("KOMPLEK_ID is required when REMOTE_DUES_URL is set")
	}

	if c.RemoteDuesURL != "" && c.RemoteDuesSecret == "" && c.Environment == "production" {
		return fmt.Errorf("REMOTE_DUES_SECRET is required in production")
	}

	return nil
}

// RemoteEnabled reports whether a remote dues service is configured
func (c *Config) RemoteEnabled() bool {
	return c.RemoteDuesURL != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a Go duration ("30s", "1m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
