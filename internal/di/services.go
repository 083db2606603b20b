package di

import (
	"context"
	"fmt"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/modules/classification"
	"github.com/aristath/folio/internal/modules/metrics"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/aristath/folio/internal/reliability"
	"github.com/aristath/folio/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices builds the valuation pipeline and optional backup service
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.PositionRepo == nil {
		return fmt.Errorf("repositories must be initialized first")
	}

	container.Classifier = classification.NewDefault()

	policy := snapshots.StalenessPolicy{
		CryptoMaxAgeDays: cfg.Valuation.StaleCryptoDays,
		EquityMaxAgeDays: cfg.Valuation.StaleEquityDays,
	}
	container.SnapshotEngine = snapshots.NewEngine(
		container.PositionRepo,
		container.PriceRepo,
		container.CashLedger,
		container.Classifier,
		policy,
		log,
	)
	container.SnapshotStore = snapshots.NewStore(container.PortfolioDB.Conn(), container.SnapshotEngine, log)
	container.MetricsDeriver = metrics.NewDeriver(container.SnapshotStore, container.PositionRepo, log)

	if cfg.Backup.Enabled() {
		client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create backup client: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			container.PortfolioDB,
			client,
			cfg.DataDir,
			cfg.Backup.Prefix,
			cfg.Backup.KeepLocal,
			log,
		)
	}

	container.Scheduler = scheduler.New(log)

	return nil
}
