package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

// Disk space thresholds in bytes.
const (
	CriticalFreeBytes uint64 = 500 * 1024 * 1024
	LowFreeBytes      uint64 = 5 * 1024 * 1024 * 1024
)

// MaintainedDB is the database surface the maintenance job needs.
type MaintainedDB interface {
	Name() string
	QuickCheck(ctx context.Context) error
	WALCheckpoint(ctx context.Context, mode string) error
	GetStats(ctx context.Context) (*database.Stats, error)
}

// DailyMaintenanceJob checks integrity, truncates the WAL and watches disk space.
type DailyMaintenanceJob struct {
	db        MaintainedDB
	dataDir   string
	freeSpace func(path string) (uint64, error)
	log       zerolog.Logger
}

// NewDailyMaintenanceJob creates a new daily maintenance job
func NewDailyMaintenanceJob(db MaintainedDB, dataDir string, log zerolog.Logger) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		db:        db,
		dataDir:   dataDir,
		freeSpace: diskFree,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *DailyMaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the daily maintenance job
func (j *DailyMaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	if err := j.db.QuickCheck(ctx); err != nil {
		j.log.Error().Err(err).Str("database", j.db.Name()).Msg("CRITICAL: Integrity check failed")
		return fmt.Errorf("integrity check failed for %s: %w", j.db.Name(), err)
	}

	if err := j.db.WALCheckpoint(ctx, "TRUNCATE"); err != nil {
		// Not critical, the next run retries.
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("WAL checkpoint failed")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	if stats, err := j.db.GetStats(ctx); err != nil {
		j.log.Warn().Err(err).Msg("Failed to read database stats")
	} else {
		j.log.Info().
			Str("database", j.db.Name()).
			Int64("size_bytes", stats.SizeBytes).
			Int64("wal_size_bytes", stats.WALSizeBytes).
			Int64("freelist_count", stats.FreelistCount).
			Msg("Database size")
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Daily maintenance completed")
	return nil
}

func (j *DailyMaintenanceJob) checkDiskSpace() error {
	free, err := j.freeSpace(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to read disk usage: %w", err)
	}

	switch {
	case free < CriticalFreeBytes:
		j.log.Error().Uint64("free_bytes", free).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %d bytes free in %s", free, j.dataDir)
	case free < LowFreeBytes:
		j.log.Warn().Uint64("free_bytes", free).Msg("Disk space running low")
	default:
		j.log.Debug().Uint64("free_bytes", free).Msg("Disk space check")
	}
	return nil
}

func diskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// BackupJob uploads a fresh backup and rotates old ones.
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates the scheduled backup job.
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "backup"
}

// Run uploads the backup; a failed rotation is logged but does not fail the run.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}
