// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/stockscorer/internal/clients/gemini"
	"github.com/aristath/stockscorer/internal/reliability"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Oracle   *OracleConfig
	Backup   *BackupConfig
	Schedule *ScheduleConfig
}

// OracleConfig holds the text generation oracle settings
type OracleConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	CacheTTL   time.Duration
}

// BackupConfig holds remote backup settings (S3 compatible object storage)
type BackupConfig struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string // Empty for AWS, set for MinIO/R2 and friends
	AccessKey string
	SecretKey string
	Prefix    string
	// RetentionDays deletes older snapshots (the newest few are always kept); 0 keeps all
	RetentionDays int
}

// ScheduleConfig holds cron expressions (with seconds) for background jobs
type ScheduleConfig struct {
	Backup        string
	CacheCleanup  string
	WALCheckpoint string
	Maintenance   string
}

// ToClientConfig converts config.OracleConfig to gemini.Config
func (c *OracleConfig) ToClientConfig() gemini.Config {
	return gemini.Config{
		APIKey:     c.APIKey,
		Model:      c.Model,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
	}
}

// ToBackupConfig converts config.BackupConfig to reliability.S3Config
func (c *BackupConfig) ToBackupConfig() reliability.S3Config {
	return reliability.S3Config{
		Bucket:    c.Bucket,
		Region:    c.Region,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Prefix:    c.Prefix,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKSCORER_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8000),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Oracle:   loadOracleConfig(),
		Backup:   loadBackupConfig(),
		Schedule: loadScheduleConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when backups are enabled")
	}

	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("invalid BACKUP_RETENTION_DAYS %d", c.Backup.RetentionDays)
	}

	// An empty GOOGLE_API_KEY is allowed: every oracle caller falls back to defaults
	return nil
}

// AppDBPath returns the path of the project document database
func (c *Config) AppDBPath() string {
	return filepath.Join(c.DataDir, "app.db")
}

// CacheDBPath returns the path of the oracle response cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func loadOracleConfig() *OracleConfig {
	return &OracleConfig{
		APIKey:     getEnv("GOOGLE_API_KEY", ""),
		Model:      getEnv("GEMINI_MODEL", gemini.DefaultModel),
		BaseURL:    getEnv("GEMINI_BASE_URL", gemini.DefaultBaseURL),
		Timeout:    getEnvAsDuration("ORACLE_TIMEOUT", 30*time.Second),
		MaxRetries: getEnvAsInt("ORACLE_MAX_RETRIES", 3),
		CacheTTL:   getEnvAsDuration("ORACLE_CACHE_TTL", 6*time.Hour),
	}
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:   getEnvAsBool("BACKUP_ENABLED", false),
		Bucket:    getEnv("BACKUP_BUCKET", ""),
		Region:    getEnv("BACKUP_REGION", "us-east-1"),
		Endpoint:  getEnv("BACKUP_ENDPOINT", ""),
		AccessKey: getEnv("BACKUP_ACCESS_KEY", ""),
		SecretKey: getEnv("BACKUP_SECRET_KEY", ""),
		Prefix:    getEnv("BACKUP_PREFIX", "stockscorer"),

		RetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
}

func loadScheduleConfig() *ScheduleConfig {
	return &ScheduleConfig{
		Backup:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
		CacheCleanup:  getEnv("CACHE_CLEANUP_SCHEDULE", "0 30 * * * *"),
		WALCheckpoint: getEnv("WAL_CHECKPOINT_SCHEDULE", "0 0 * * * *"),
		Maintenance:   getEnv("MAINTENANCE_SCHEDULE", "0 0 4 * * 0"),
	}
}
