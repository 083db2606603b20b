package di

import (
	"context"
	"testing"

	"github.com/aristath/folio/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir: t.TempDir(),
		Port:    8001,
		Valuation: config.ValuationConfig{
			StaleCryptoDays:    1,
			StaleEquityDays:    3,
			DefaultTopHoldings: 5,
		},
		Scheduler: config.SchedulerConfig{
			SnapshotSchedule:    "0 30 23 * * *",
			MaintenanceSchedule: "",
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.PortfolioDB)
	assert.NotNil(t, container.PositionRepo)
	assert.NotNil(t, container.PriceRepo)
	assert.NotNil(t, container.CashLedger)
	assert.NotNil(t, container.SnapshotStore)
	assert.NotNil(t, container.MetricsDeriver)
	assert.NotNil(t, container.Scheduler)
	assert.Nil(t, container.BackupService, "no bucket configured")

	byName := jobs.ByName()
	assert.Contains(t, byName, "daily_snapshot")
	assert.Contains(t, byName, "wal_checkpoint")
	assert.Contains(t, byName, "daily_maintenance")
	assert.NotContains(t, byName, "backup")

	// An empty database snapshots nothing and succeeds.
	assert.NoError(t, container.Scheduler.RunNow(jobs.DailySnapshot))
}

func TestWire_WithBackupBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup = config.BackupConfig{
		Bucket:          "folio-backups",
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "auto",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Prefix:          "folio",
		Schedule:        "0 0 3 * * *",
		RetentionDays:   30,
	}

	container, jobs, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.BackupService)
	assert.NotNil(t, jobs.Backup)
	assert.Contains(t, jobs.ByName(), "backup")
}

func TestRegisterJobs_RequiresServices(t *testing.T) {
	_, err := RegisterJobs(&Container{}, testConfig(t), zerolog.Nop())
	assert.Error(t, err)
}
