// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the portfolio database (always absolute)
	LogLevel  string
	Port      int
	DevMode   bool
	Valuation ValuationConfig
	Scheduler SchedulerConfig
	Backup    BackupConfig
}

// ValuationConfig holds snapshot and metrics tunables.
type ValuationConfig struct {
	StaleCryptoDays    int // crypto closes older than this many days are flagged stale
	StaleEquityDays    int // stock and bond ETF closes older than this many days are flagged stale
	DefaultTopHoldings int
}

// SchedulerConfig holds cron specs (with seconds) for background jobs.
type SchedulerConfig struct {
	SnapshotSchedule    string // empty disables the nightly snapshot job
	MaintenanceSchedule string // integrity check, disk space and WAL checkpoint
}

// BackupConfig configures database backups to an S3-compatible bucket.
type BackupConfig struct {
	Bucket          string
	Endpoint        string // custom endpoint for R2, MinIO and similar; empty uses AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string
	RetentionDays   int  // older remote archives are rotated out; 0 keeps all
	KeepLocal       bool // keep the staged archive in DataDir/backups after upload
}

// Enabled reports whether a bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// DatabasePath returns the location of portfolio.db.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "portfolio.db")
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FOLIO_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("FOLIO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Valuation: ValuationConfig{
			StaleCryptoDays:    getEnvAsInt("STALE_CRYPTO_DAYS", 1),
			StaleEquityDays:    getEnvAsInt("STALE_EQUITY_DAYS", 3),
			DefaultTopHoldings: getEnvAsInt("DEFAULT_TOP_HOLDINGS", 5),
		},
		Scheduler: SchedulerConfig{
			SnapshotSchedule:    getEnv("SNAPSHOT_SCHEDULE", "0 30 23 * * *"),
			MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 2 * * *"),
		},
		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Prefix:          strings.Trim(getEnv("BACKUP_S3_PREFIX", "folio"), "/"),
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
			KeepLocal:       getEnvAsBool("BACKUP_KEEP_LOCAL", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that thresholds and schedules are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Valuation.StaleCryptoDays < 0 {
		return fmt.Errorf("STALE_CRYPTO_DAYS must not be negative, got %d", c.Valuation.StaleCryptoDays)
	}
	if c.Valuation.StaleEquityDays < 0 {
		return fmt.Errorf("STALE_EQUITY_DAYS must not be negative, got %d", c.Valuation.StaleEquityDays)
	}
	if c.Valuation.DefaultTopHoldings <= 0 {
		return fmt.Errorf("DEFAULT_TOP_HOLDINGS must be positive, got %d", c.Valuation.DefaultTopHoldings)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if c.Scheduler.SnapshotSchedule != "" {
		if _, err := parser.Parse(c.Scheduler.SnapshotSchedule); err != nil {
			return fmt.Errorf("invalid SNAPSHOT_SCHEDULE %q: %w", c.Scheduler.SnapshotSchedule, err)
		}
	}
	if c.Scheduler.MaintenanceSchedule != "" {
		if _, err := parser.Parse(c.Scheduler.MaintenanceSchedule); err != nil {
			return fmt.Errorf("invalid MAINTENANCE_SCHEDULE %q: %w", c.Scheduler.MaintenanceSchedule, err)
		}
	}
	if c.Backup.Enabled() {
		if _, err := parser.Parse(c.Backup.Schedule); err != nil {
			return fmt.Errorf("invalid BACKUP_SCHEDULE %q: %w", c.Backup.Schedule, err)
		}
		if (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
			return fmt.Errorf("BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
		}
		if c.Backup.RetentionDays < 0 {
			return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.Backup.RetentionDays)
		}
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
