package testing

import (
	"database/sql"
	"testing"
)

// FixtureAccountID is the account seeded by SeedValuationFixture.
const FixtureAccountID int64 = 1

// FixturePosition describes one seeded position row.
type FixturePosition struct {
	Ticker     string
	AssetClass string
	Units      string
	AvgPrice   string
	OpenedDate string
}

// ValuationFixturePositions is the reference portfolio:
// AAPL 10 @150, TLT 5 @100, BTC-USD 0.5 @30000 and a 1000 unit BOND_CASH holding at 1.
var ValuationFixturePositions = []FixturePosition{
	{Ticker: "AAPL", AssetClass: "STOCK", Units: "10", AvgPrice: "150", OpenedDate: "2025-09-29"},
	{Ticker: "TLT", AssetClass: "BOND_ETF", Units: "5", AvgPrice: "100", OpenedDate: "2025-09-29"},
	{Ticker: "BTC-USD", AssetClass: "CRYPTO", Units: "0.5", AvgPrice: "30000", OpenedDate: "2025-09-29"},
	{Ticker: "B1", AssetClass: "BOND_CASH", Units: "1000", AvgPrice: "1", OpenedDate: "2025-09-29"},
}

// SeedValuationFixture inserts the reference portfolio for FixtureAccountID:
// positions, closes on 2025-10-01 (AAPL 175, TLT 90, BTC-USD 60000), an AAPL
// close of 170 on 2025-09-30, and a 5000 deposit on 2025-09-29.
func SeedValuationFixture(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, p := range ValuationFixturePositions {
		InsertPosition(t, db, FixtureAccountID, p)
	}

	InsertPrice(t, db, "AAPL", "2025-09-30", "170")
	InsertPrice(t, db, "AAPL", "2025-10-01", "175")
	InsertPrice(t, db, "TLT", "2025-10-01", "90")
	InsertPrice(t, db, "BTC-USD", "2025-10-01", "60000")

	InsertCash(t, db, "fixture-deposit-1", FixtureAccountID, "5000", "deposit", "2025-09-29")
}

// InsertPosition inserts a raw position row and returns its id.
func InsertPosition(t *testing.T, db *sql.DB, accountID int64, p FixturePosition) int64 {
	t.Helper()

	var assetClass interface{}
	if p.AssetClass != "" {
		assetClass = p.AssetClass
	}
	res, err := db.Exec(
		`INSERT INTO positions (account_id, ticker, asset_class, units, avg_price, opened_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, p.Ticker, assetClass, p.Units, p.AvgPrice, p.OpenedDate,
	)
	if err != nil {
		t.Fatalf("Failed to insert position %s: %v", p.Ticker, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read position id: %v", err)
	}
	return id
}

// InsertPrice inserts or overwrites a daily close.
func InsertPrice(t *testing.T, db *sql.DB, ticker, date, closePrice string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES (?, ?, ?)
		 ON CONFLICT(ticker, price_date) DO UPDATE SET close_price = excluded.close_price`,
		ticker, date, closePrice,
	)
	if err != nil {
		t.Fatalf("Failed to insert price %s@%s: %v", ticker, date, err)
	}
}

// InsertCash inserts a raw cash transaction.
func InsertCash(t *testing.T, db *sql.DB, id string, accountID int64, amount, txType, date string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO cash_transactions (id, account_id, amount, type, transaction_date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, NULL, 0)`,
		id, accountID, amount, txType, date,
	)
	if err != nil {
		t.Fatalf("Failed to insert cash transaction %s: %v", id, err)
	}
}
