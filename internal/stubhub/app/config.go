package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer        string // Required: issuer claim for tokens
	SigningSecret string // Required: HS256 secret for access tokens

	AccessTTL  time.Duration // Optional: access token lifetime (default: 1h)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 30 days)

	DatabaseFile string // Optional: path to SQLite database file (default: ./hub.db)

	SeedUsername     string // Optional: username provisioned on first boot (default: e2e-user)
	SeedPassword     string // Optional: password for the seed user (default: e2e-password)
	SeedClientID     string // Optional: client ID provisioned on first boot (default: e2e-client)
	SeedClientSecret string // Optional: secret for the seed client (default: e2e-secret)
	SeedClientScopes []string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        getEnvOrDefault("HUB_ISSUER", "stubhub"),
		SigningSecret: os.Getenv("HUB_SIGNING_SECRET"),

		AccessTTL:  getEnvDurationOrDefault("HUB_ACCESS_TTL", time.Hour),
		RefreshTTL: getEnvDurationOrDefault("HUB_REFRESH_TTL", 30*24*time.Hour),

		DatabaseFile: getEnvOrDefault("HUB_DATABASE_FILE", "hub.db"),

		SeedUsername:     getEnvOrDefault("HUB_SEED_USERNAME", "e2e-user"),
		SeedPassword:     getEnvOrDefault("HUB_SEED_PASSWORD", "e2e-password"),
		SeedClientID:     getEnvOrDefault("HUB_SEED_CLIENT_ID", "e2e-client"),
		SeedClientSecret: getEnvOrDefault("HUB_SEED_CLIENT_SECRET", "e2e-secret"),
		SeedClientScopes: splitFields(
			getEnvOrDefault("HUB_SEED_CLIENT_SCOPES", "entries.read entries.write"),
		),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg
}

func splitFields(value string) []string {
	return strings.Fields(value)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
