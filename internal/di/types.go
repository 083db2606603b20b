// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/cash_flows"
	"github.com/aristath/folio/internal/modules/classification"
	"github.com/aristath/folio/internal/modules/metrics"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/aristath/folio/internal/reliability"
	"github.com/aristath/folio/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	// Database
	PortfolioDB *database.DB

	// Repositories
	PositionRepo *portfolio.PositionRepository
	PriceRepo    *prices.Repository
	CashLedger   *cash_flows.Repository

	// Services
	Classifier     *classification.Classifier
	SnapshotEngine *snapshots.Engine
	SnapshotStore  *snapshots.Store
	MetricsDeriver *metrics.Deriver
	BackupService  *reliability.BackupService // nil when no bucket is configured

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the scheduled jobs for manual triggering via API
type JobInstances struct {
	DailySnapshot    scheduler.Job
	WALCheckpoint    scheduler.Job
	DailyMaintenance scheduler.Job
	Backup           scheduler.Job // nil when backups are disabled
}

// ByName returns every registered job keyed by its name.
func (j *JobInstances) ByName() map[string]scheduler.Job {
	jobs := make(map[string]scheduler.Job)
	for _, job := range []scheduler.Job{j.DailySnapshot, j.WALCheckpoint, j.DailyMaintenance, j.Backup} {
		if job != nil {
			jobs[job.Name()] = job
		}
	}
	return jobs
}

// Close releases the database connection.
func (c *Container) Close() error {
	if c.PortfolioDB == nil {
		return nil
	}
	return c.PortfolioDB.Close()
}
