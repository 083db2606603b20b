package di

import (
	"fmt"
	"os"

	"github.com/aristath/folio/internal/config"
	"github.com/aristath/folio/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens portfolio.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	portfolioDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
	}

	if err := portfolioDB.Migrate(); err != nil {
		portfolioDB.Close()
		return nil, fmt.Errorf("failed to apply portfolio schema: %w", err)
	}

	log.Info().Str("path", portfolioDB.Path()).Msg("Portfolio database ready")

	return &Container{PortfolioDB: portfolioDB}, nil
}
