package config

import (
	"fmt"
	"os"
	"strconv"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Ingest        IngestConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// IngestConfig drives the scheduled directory watcher. When WatchDir is
// empty the watcher stays off and uploads only arrive over HTTP.
type IngestConfig struct {
	WatchDir      string
	WatchSchedule string
	ArchiveDir    string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "localhost"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			CORSOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "pulseiq-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Ingest: IngestConfig{
			WatchDir:      getEnv("INGEST_WATCH_DIR", ""),
			WatchSchedule: getEnv("INGEST_WATCH_SCHEDULE", "@every 15m"),
			ArchiveDir:    getEnv("INGEST_ARCHIVE_DIR", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
