// Package portfolio provides read and write access to account positions.
package portfolio

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/rs/zerolog"
)

// PositionRepository handles position database operations
type PositionRepository struct {
	db  *sql.DB // portfolio.db - positions
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// GetByAccount returns the account's positions in insertion order.
func (r *PositionRepository) GetByAccount(ctx context.Context, accountID int64) ([]Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, ticker, COALESCE(asset_class, ''), units, avg_price, opened_date
		 FROM positions
		 WHERE account_id = ?
		 ORDER BY id ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	positions := make([]Position, 0)
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// Create inserts a position and returns it with its assigned ID.
// The asset class hint is stored as given; classification happens at valuation time.
func (r *PositionRepository) Create(ctx context.Context, pos Position) (*Position, error) {
	pos.Ticker = domain.NormalizeTicker(pos.Ticker)
	if pos.AccountID <= 0 {
		return nil, domain.NewValidationError("account_id", "account id must be positive, got %d", pos.AccountID)
	}
	if pos.Ticker == "" {
		return nil, domain.NewValidationError("ticker", "ticker is required")
	}
	if pos.Units.IsNegative() {
		return nil, domain.NewValidationError("units", "units cannot be negative, got %s", pos.Units)
	}
	if pos.AvgPrice.IsNegative() {
		return nil, domain.NewValidationError("avg_price", "average price cannot be negative, got %s", pos.AvgPrice)
	}
	if pos.OpenedDate.IsZero() {
		return nil, domain.NewValidationError("opened_date", "opened date is required")
	}
	pos.OpenedDate = domain.NormalizeDate(pos.OpenedDate)

	var hint interface{}
	if h := strings.TrimSpace(string(pos.AssetClassHint)); h != "" {
		hint = h
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO positions (account_id, ticker, asset_class, units, avg_price, opened_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pos.AccountID, pos.Ticker, hint, pos.Units.String(), pos.AvgPrice.String(), domain.FormatDate(pos.OpenedDate),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert position %s: %w", pos.Ticker, err)
	}

	pos.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read position id: %w", err)
	}

	r.log.Info().
		Int64("account_id", pos.AccountID).
		Int64("position_id", pos.ID).
		Str("ticker", pos.Ticker).
		Msg("Position created")

	return &pos, nil
}

// ListAccounts returns every account that holds a position or a cash transaction.
func (r *PositionRepository) ListAccounts(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT account_id FROM positions
		 UNION
		 SELECT account_id FROM cash_transactions
		 ORDER BY account_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		accounts = append(accounts, id)
	}

	return accounts, rows.Err()
}

// EarliestOpenedDate returns the first opened_date across the account's positions.
// ok is false when the account has no positions.
func (r *PositionRepository) EarliestOpenedDate(ctx context.Context, accountID int64) (date time.Time, ok bool, err error) {
	var raw sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT MIN(opened_date) FROM positions WHERE account_id = ?`,
		accountID,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query earliest opened date for account %d: %w", accountID, err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}

	date, err = time.Parse(domain.DateFormat, raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt opened date %q: %w", raw.String, err)
	}
	return date, true, nil
}

func scanPosition(rows *sql.Rows) (Position, error) {
	var pos Position
	var hint, opened string

	err := rows.Scan(&pos.ID, &pos.AccountID, &pos.Ticker, &hint, &pos.Units, &pos.AvgPrice, &opened)
	if err != nil {
		return pos, err
	}

	pos.AssetClassHint = domain.AssetClass(hint)
	pos.OpenedDate, err = time.Parse(domain.DateFormat, opened)
	if err != nil {
		return pos, fmt.Errorf("corrupt opened date %q: %w", opened, err)
	}
	return pos, nil
}
