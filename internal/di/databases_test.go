package di

import (
	"path/filepath"
	"testing"

	"github.com/aristath/folio/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabases(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &config.Config{DataDir: tmpDir}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.FileExists(t, filepath.Join(tmpDir, "portfolio.db"))

	var tables int
	require.NoError(t, container.PortfolioDB.Conn().QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN
		 ('positions', 'daily_prices', 'cash_transactions', 'portfolio_summary', 'portfolio_daily_value')`,
	).Scan(&tables))
	assert.Equal(t, 5, tables)
}

func TestInitializeDatabases_Reopen(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}

	first, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestInitializeRepositories_RequiresDatabase(t *testing.T) {
	assert.Error(t, InitializeRepositories(&Container{}, zerolog.Nop()))
}
