package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FOLIO_DATA_DIR", dir)
	for _, key := range []string{
		"FOLIO_PORT", "LOG_LEVEL", "DEV_MODE", "STALE_CRYPTO_DAYS", "STALE_EQUITY_DAYS",
		"DEFAULT_TOP_HOLDINGS", "SNAPSHOT_SCHEDULE", "BACKUP_S3_BUCKET",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 1, cfg.Valuation.StaleCryptoDays)
	assert.Equal(t, 3, cfg.Valuation.StaleEquityDays)
	assert.Equal(t, 5, cfg.Valuation.DefaultTopHoldings)
	assert.Equal(t, "0 30 23 * * *", cfg.Scheduler.SnapshotSchedule)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.MaintenanceSchedule)
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, dir+"/portfolio.db", cfg.DatabasePath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FOLIO_DATA_DIR", t.TempDir())
	t.Setenv("FOLIO_PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("STALE_CRYPTO_DAYS", "2")
	t.Setenv("STALE_EQUITY_DAYS", "5")
	t.Setenv("BACKUP_S3_BUCKET", "folio-backups")
	t.Setenv("BACKUP_S3_ENDPOINT", "https://example.r2.cloudflarestorage.com")
	t.Setenv("BACKUP_S3_PREFIX", "/nightly/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 2, cfg.Valuation.StaleCryptoDays)
	assert.Equal(t, 5, cfg.Valuation.StaleEquityDays)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "nightly", cfg.Backup.Prefix)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:      8001,
			Valuation: ValuationConfig{StaleCryptoDays: 1, StaleEquityDays: 3, DefaultTopHoldings: 5},
			Scheduler: SchedulerConfig{SnapshotSchedule: "0 30 23 * * *"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"snapshot job disabled", func(c *Config) { c.Scheduler.SnapshotSchedule = "" }, false},
		{"negative crypto threshold", func(c *Config) { c.Valuation.StaleCryptoDays = -1 }, true},
		{"negative equity threshold", func(c *Config) { c.Valuation.StaleEquityDays = -1 }, true},
		{"zero top holdings", func(c *Config) { c.Valuation.DefaultTopHoldings = 0 }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"bad snapshot schedule", func(c *Config) { c.Scheduler.SnapshotSchedule = "every night" }, true},
		{"bad backup schedule", func(c *Config) {
			c.Backup = BackupConfig{Bucket: "b", Schedule: "nope"}
		}, true},
		{"half configured credentials", func(c *Config) {
			c.Backup = BackupConfig{Bucket: "b", Schedule: "@daily", AccessKeyID: "key"}
		}, true},
		{"negative retention", func(c *Config) {
			c.Backup = BackupConfig{Bucket: "b", Schedule: "@daily", RetentionDays: -1}
		}, true},
		{"bad maintenance schedule", func(c *Config) { c.Scheduler.MaintenanceSchedule = "often" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
