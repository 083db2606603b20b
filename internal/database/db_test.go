package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigratedDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path: filepath.Join(t.TempDir(), "portfolio.db"),
		Name: "portfolio",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestNew_DefaultsToStandardProfile(t *testing.T) {
	db := newMigratedDB(t)

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "portfolio", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestMigrate_CreatesTablesAndIsIdempotent(t *testing.T) {
	db := newMigratedDB(t)

	require.NoError(t, db.Migrate())

	for _, table := range []string{"positions", "daily_prices", "cash_transactions", "portfolio_summary", "portfolio_daily_value"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_UnknownDatabase(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "other.db"), Name: "other"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate())
}

func TestDailyPricesUniqueOnTickerAndDate(t *testing.T) {
	db := newMigratedDB(t)

	_, err := db.Conn().Exec(`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES ('AAPL', '2025-10-01', '175')`)
	require.NoError(t, err)
	_, err = db.Conn().Exec(`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES ('AAPL', '2025-10-01', '176')`)
	assert.Error(t, err)
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db := newMigratedDB(t)

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES ('TLT', '2025-10-01', '90')`)
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM daily_prices`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newMigratedDB(t)
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES ('TLT', '2025-10-01', '90')`); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM daily_prices`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RecoversPanic(t *testing.T) {
	db := newMigratedDB(t)

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

func TestWithTransaction_NilDB(t *testing.T) {
	err := WithTransaction(context.Background(), nil, func(tx *sql.Tx) error { return nil })
	assert.Error(t, err)
}

func TestBackupTo(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()

	_, err := db.Conn().Exec(`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES ('AAPL', '2025-10-01', '175')`)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, db.BackupTo(ctx, dest))
	assert.Error(t, db.BackupTo(ctx, dest), "existing destination must not be overwritten")

	copyDB, err := New(Config{Path: dest, Name: "portfolio"})
	require.NoError(t, err)
	defer copyDB.Close()

	var closePrice string
	require.NoError(t, copyDB.Conn().QueryRow(`SELECT close_price FROM daily_prices WHERE ticker = 'AAPL'`).Scan(&closePrice))
	assert.Equal(t, "175", closePrice)
}

func TestHealthCheckAndStats(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()

	require.NoError(t, db.HealthCheck(ctx))
	require.NoError(t, db.WALCheckpoint(ctx, ""))
	assert.Error(t, db.WALCheckpoint(ctx, "BOGUS"))

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
}

func TestSchema(t *testing.T) {
	schema, err := Schema("portfolio")
	require.NoError(t, err)
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS portfolio_summary")

	_, err = Schema("missing")
	assert.Error(t, err)
}
