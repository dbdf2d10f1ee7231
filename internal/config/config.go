package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Client modes for the extraction and feed ingestion collaborators
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Content extraction client configuration
	Extraction ExtractionConfig

	// Feed ingestion and cache configuration
	Feed FeedConfig

	// Save pipeline configuration
	Save SaveConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver       string
	Path         string // sqlite3 only
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// ExtractionConfig holds content extraction client settings
type ExtractionConfig struct {
	Mode         string // "local" or "remote"
	Endpoint     string
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string
}

// FeedConfig holds feed ingestion and cache settings
type FeedConfig struct {
	Mode            string // "local" or "remote"
	Endpoint        string
	Timeout         time.Duration
	SourcesFile     string
	DefaultSource   string
	DefaultMaxItems int
	MaxItemsLimit   int
}

// SaveConfig holds save pipeline settings
type SaveConfig struct {
	DefaultUserID string
	Workers       int
	StripTracking bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	driver := getEnv("DB_DRIVER", DriverSQLite)
	defaultConns := 25
	if driver == DriverSQLite {
		defaultConns = 1
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       driver,
			Path:         getEnv("DB_PATH", "./data/readlater.db"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "readlater"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", defaultConns),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 1),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Extraction: ExtractionConfig{
			Mode:         getEnv("EXTRACTOR_MODE", ModeLocal),
			Endpoint:     getEnv("EXTRACTOR_ENDPOINT", ""),
			Timeout:      getDurationEnv("EXTRACTOR_TIMEOUT", 20*time.Second),
			MaxBodyBytes: getInt64Env("EXTRACTOR_MAX_BODY_BYTES", 5<<20), // 5MB
			UserAgent:    getEnv("EXTRACTOR_USER_AGENT", "readlater/1.0"),
		},
		Feed: FeedConfig{
			Mode:            getEnv("FEED_MODE", ModeLocal),
			Endpoint:        getEnv("FEED_ENDPOINT", ""),
			Timeout:         getDurationEnv("FEED_TIMEOUT", 15*time.Second),
			SourcesFile:     getEnv("FEED_SOURCES_FILE", ""),
			DefaultSource:   getEnv("FEED_DEFAULT_SOURCE", "react-native"),
			DefaultMaxItems: getIntEnv("FEED_DEFAULT_MAX_ITEMS", 10),
			MaxItemsLimit:   getIntEnv("FEED_MAX_ITEMS_LIMIT", 100),
		},
		Save: SaveConfig{
			DefaultUserID: getEnv("DEFAULT_USER_ID", "1"),
			Workers:       getIntEnv("SAVE_WORKERS", 4),
			StripTracking: getBoolEnv("SAVE_STRIP_TRACKING", false),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite3")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be one of: %s, %s", DriverSQLite, DriverPostgres)
	}

	if err := validateMode("EXTRACTOR_MODE", c.Extraction.Mode, c.Extraction.Endpoint); err != nil {
		return err
	}
	if err := validateMode("FEED_MODE", c.Feed.Mode, c.Feed.Endpoint); err != nil {
		return err
	}

	if c.Feed.DefaultMaxItems <= 0 {
		return fmt.Errorf("FEED_DEFAULT_MAX_ITEMS must be positive")
	}
	if c.Feed.MaxItemsLimit < c.Feed.DefaultMaxItems {
		return fmt.Errorf("FEED_MAX_ITEMS_LIMIT must be at least FEED_DEFAULT_MAX_ITEMS")
	}
	if c.Save.Workers <= 0 {
		return fmt.Errorf("SAVE_WORKERS must be positive")
	}
	if c.Save.DefaultUserID == "" {
		return fmt.Errorf("DEFAULT_USER_ID must not be empty")
	}
	return nil
}

func validateMode(key, mode, endpoint string) error {
	switch mode {
	case ModeLocal:
		return nil
	case ModeRemote:
		if endpoint == "" {
			return fmt.Errorf("%s=remote requires an endpoint", key)
		}
		return nil
	default:
		return fmt.Errorf("%s must be one of: %s, %s", key, ModeLocal, ModeRemote)
	}
}

// GetDSN returns the connection string for the configured driver
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", c.Path)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
