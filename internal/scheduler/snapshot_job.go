package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// AccountLister lists every account that holds positions or cash.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]int64, error)
}

// SnapshotUpserter computes and persists one account snapshot.
type SnapshotUpserter interface {
	UpsertSnapshot(ctx context.Context, accountID int64, asOf time.Time) (*snapshots.PortfolioSnapshot, error)
}

// SnapshotJob persists today's snapshot for every account so the value
// series has one point per day even when nobody queries it.
type SnapshotJob struct {
	accounts AccountLister
	store    SnapshotUpserter
	today    func() time.Time
	timeout  time.Duration
	log      zerolog.Logger
}

// NewSnapshotJob creates the daily snapshot job.
func NewSnapshotJob(accounts AccountLister, store SnapshotUpserter, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		accounts: accounts,
		store:    store,
		today:    domain.Today,
		timeout:  5 * time.Minute,
		log:      log.With().Str("job", "daily_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "daily_snapshot"
}

// Run snapshots each account. A failing account does not stop the others;
// the failures are joined into the returned error.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	accounts, err := j.accounts.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	asOf := j.today()
	var errs []error
	persisted := 0

	for _, accountID := range accounts {
		snap, err := j.store.UpsertSnapshot(ctx, accountID, asOf)
		if err != nil {
			j.log.Error().
				Err(err).
				Int64("account_id", accountID).
				Msg("Failed to persist snapshot")
			errs = append(errs, fmt.Errorf("account %d: %w", accountID, err))
			continue
		}

		persisted++
		if n := snap.MissingCount(); n > 0 {
			j.log.Warn().
				Int64("account_id", accountID).
				Int("missing_prices", n).
				Msg("Snapshot persisted with missing prices")
		}
	}

	j.log.Info().
		Str("as_of", domain.FormatDate(asOf)).
		Int("accounts", len(accounts)).
		Int("persisted", persisted).
		Msg("Daily snapshots complete")

	return errors.Join(errs...)
}
