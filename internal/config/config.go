// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	LogLevel string
	Port     int
	DevMode  bool

	// Provider endpoints and the shared request timeout.
	RESTCountriesURL string
	WorldBankURL     string
	ProviderTimeout  time.Duration

	// Cache TTLs. Directory facts are near-static; indicator values get
	// revised, so their entries expire sooner.
	DirectoryTTL time.Duration
	IndicatorTTL time.Duration

	// LatestWindow is how many recent years are scanned when picking the
	// newest available indicator value for a country record.
	LatestWindow int

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup settings. Backups stay
// disabled unless a bucket is configured.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // custom endpoint for S3-compatible stores, empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("COUNTRYCOMPARE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RESTCountriesURL: getEnv("RESTCOUNTRIES_URL", "https://restcountries.com/v3.1"),
		WorldBankURL:     getEnv("WORLDBANK_URL", "https://api.worldbank.org/v2"),
		ProviderTimeout:  getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),

		DirectoryTTL: getEnvAsDuration("DIRECTORY_TTL", 24*time.Hour),
		IndicatorTTL: getEnvAsDuration("INDICATOR_TTL", time.Hour),
		LatestWindow: getEnvAsInt("LATEST_WINDOW_YEARS", 6),

		Backup: loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive, got %s", c.ProviderTimeout)
	}
	if c.DirectoryTTL <= 0 || c.IndicatorTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.LatestWindow < 1 {
		return fmt.Errorf("latest window must be at least 1 year, got %d", c.LatestWindow)
	}
	return nil
}

func loadBackupConfig() *BackupConfig {
	bucket := getEnv("BACKUP_S3_BUCKET", "")
	return &BackupConfig{
		Enabled:         bucket != "",
		Bucket:          bucket,
		Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:          getEnv("BACKUP_S3_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_S3_PREFIX", "countrycompare"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
