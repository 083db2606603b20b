package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Checkpointer runs a SQLite WAL checkpoint.
type Checkpointer interface {
	Name() string
	WALCheckpoint(ctx context.Context, mode string) error
}

// WALCheckpointJob truncates the write-ahead log of the portfolio database.
// Snapshot upserts rewrite many rows daily, so the WAL grows without it.
type WALCheckpointJob struct {
	db   Checkpointer
	mode string
	log  zerolog.Logger
}

// NewWALCheckpointJob creates a checkpoint job. An empty mode means TRUNCATE.
func NewWALCheckpointJob(db Checkpointer, mode string, log zerolog.Logger) *WALCheckpointJob {
	if mode == "" {
		mode = "TRUNCATE"
	}
	return &WALCheckpointJob{
		db:   db,
		mode: mode,
		log:  log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint
func (j *WALCheckpointJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.db.WALCheckpoint(ctx, j.mode); err != nil {
		return fmt.Errorf("checkpoint %s: %w", j.db.Name(), err)
	}

	j.log.Debug().
		Str("database", j.db.Name()).
		Str("mode", j.mode).
		Msg("WAL checkpoint completed")
	return nil
}
