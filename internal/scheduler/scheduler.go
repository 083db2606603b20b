// Package scheduler runs recurring background jobs on cron schedules.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// StopWithTimeout stops the scheduler, giving running jobs at most timeout to finish.
func (s *Scheduler) StopWithTimeout(timeout time.Duration) {
	ctx := s.cron.Stop()
	wait, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Scheduler stopped")
	case <-wait.Done():
		s.log.Warn().Dur("timeout", timeout).Msg("Scheduler stopped before running jobs finished")
	}
}

// AddJob adds a job to the scheduler
// schedule format: "seconds minutes hours day month weekday"
// Example: "0 */5 * * * *" = every 5 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.execute(job)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("job", job.Name()).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// RunNow executes a job immediately on the calling goroutine
func (s *Scheduler) RunNow(job Job) error {
	return s.execute(job)
}

func (s *Scheduler) execute(job Job) error {
	runLog := s.log.With().
		Str("job", job.Name()).
		Str("run_id", uuid.NewString()).
		Logger()

	start := time.Now()
	runLog.Debug().Msg("Running job")

	if err := job.Run(); err != nil {
		runLog.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return err
	}

	runLog.Debug().
		Dur("duration", time.Since(start)).
		Msg("Job completed")
	return nil
}
