package di

import (
	"fmt"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/reliability"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/rs/zerolog"
)

// WALCheckpointSchedule runs a passive checkpoint every hour.
const WALCheckpointSchedule = "0 0 * * * *"

// RegisterJobs creates the background jobs and registers those with a schedule
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("services must be initialized first")
	}

	instances := &JobInstances{
		DailySnapshot:    scheduler.NewSnapshotJob(container.PositionRepo, container.SnapshotStore, log),
		WALCheckpoint:    scheduler.NewWALCheckpointJob(container.PortfolioDB, "PASSIVE", log),
		DailyMaintenance: reliability.NewDailyMaintenanceJob(container.PortfolioDB, cfg.DataDir, log),
	}
	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	}

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.Scheduler.SnapshotSchedule, instances.DailySnapshot},
		{WALCheckpointSchedule, instances.WALCheckpoint},
		{cfg.Scheduler.MaintenanceSchedule, instances.DailyMaintenance},
	}
	if instances.Backup != nil {
		schedules = append(schedules, struct {
			spec string
			job  scheduler.Job
		}{cfg.Backup.Schedule, instances.Backup})
	}

	for _, s := range schedules {
		if s.spec == "" {
			log.Info().Str("job", s.job.Name()).Msg("Job has no schedule, manual trigger only")
			continue
		}
		if err := container.Scheduler.AddJob(s.spec, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	return instances, nil
}
