package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store persists snapshots into portfolio_summary and portfolio_daily_value.
type Store struct {
	db     *sql.DB
	engine SnapshotComputer
	log    zerolog.Logger
}

// NewStore creates a snapshot store backed by db.
func NewStore(db *sql.DB, engine SnapshotComputer, log zerolog.Logger) *Store {
	return &Store{
		db:     db,
		engine: engine,
		log:    log.With().Str("repo", "snapshots").Logger(),
	}
}

// UpsertSnapshot computes a fresh snapshot and persists it.
//
// The summary row and every position row for (accountID, asOf) are written in
// a single transaction. Rows left over from positions that no longer exist are
// removed so the persisted date always matches the latest computation.
func (s *Store) UpsertSnapshot(ctx context.Context, accountID int64, asOf time.Time) (*PortfolioSnapshot, error) {
	defer utils.TimeOperation("snapshot_upsert", s.log)()

	snap, err := s.engine.ComputeSnapshot(ctx, accountID, asOf)
	if err != nil {
		return nil, err
	}

	date := domain.FormatDate(snap.AsOf)

	err = database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO portfolio_summary
				(account_id, date, equity_value, bond_etf_value, crypto_value, bond_cash_value,
				 cash_value, total_value, position_count, missing_count, stale_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(account_id, date) DO UPDATE SET
				equity_value = excluded.equity_value,
				bond_etf_value = excluded.bond_etf_value,
				crypto_value = excluded.crypto_value,
				bond_cash_value = excluded.bond_cash_value,
				cash_value = excluded.cash_value,
				total_value = excluded.total_value,
				position_count = excluded.position_count,
				missing_count = excluded.missing_count,
				stale_count = excluded.stale_count`,
			accountID, date,
			snap.ByClass.Equity.String(),
			snap.ByClass.BondETF.String(),
			snap.ByClass.Crypto.String(),
			snap.ByClass.BondCash.String(),
			snap.ByClass.Cash.String(),
			snap.TotalValue.String(),
			len(snap.Positions), snap.MissingCount(), snap.StaleCount(),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert portfolio summary: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO portfolio_daily_value
				(position_id, date, account_id, ticker, asset_class, units, price, price_date, position_val, missing_price)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(position_id, date) DO UPDATE SET
				account_id = excluded.account_id,
				ticker = excluded.ticker,
				asset_class = excluded.asset_class,
				units = excluded.units,
				price = excluded.price,
				price_date = excluded.price_date,
				position_val = excluded.position_val,
				missing_price = excluded.missing_price`,
		)
		if err != nil {
			return fmt.Errorf("failed to prepare daily value upsert: %w", err)
		}
		defer stmt.Close()

		ids := make([]interface{}, 0, len(snap.Positions))
		for _, p := range snap.Positions {
			var price, priceDate interface{}
			if p.Price != nil {
				price = p.Price.String()
			}
			if p.PriceDate != nil {
				priceDate = domain.FormatDate(*p.PriceDate)
			}

			_, err := stmt.ExecContext(ctx,
				p.PositionID, date, accountID, p.Ticker, string(p.AssetClass),
				p.Units.String(), price, priceDate, p.PositionVal.String(), boolToInt(p.MissingPrice),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert daily value for position %d: %w", p.PositionID, err)
			}
			ids = append(ids, p.PositionID)
		}

		return deleteOrphanDailyValues(ctx, tx, accountID, date, ids)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int64("account_id", accountID).
		Str("date", date).
		Str("total_value", snap.TotalValue.String()).
		Int("positions", len(snap.Positions)).
		Msg("Snapshot persisted")

	return snap, nil
}

func deleteOrphanDailyValues(ctx context.Context, tx *sql.Tx, accountID int64, date string, keep []interface{}) error {
	query := `DELETE FROM portfolio_daily_value WHERE account_id = ? AND date = ?`
	args := []interface{}{accountID, date}
	if len(keep) > 0 {
		query += ` AND position_id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + `)`
		args = append(args, keep...)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove stale daily values: %w", err)
	}
	return nil
}

// GetSeries returns persisted total values between start and end inclusive,
// ordered by date. Dates that were never snapshotted are absent.
func (s *Store) GetSeries(ctx context.Context, accountID int64, start, end time.Time) ([]SeriesPoint, error) {
	if start.After(end) {
		return nil, domain.NewValidationError("start", "start %s is after end %s",
			domain.FormatDate(start), domain.FormatDate(end))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, total_value FROM portfolio_summary
		 WHERE account_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		accountID, domain.FormatDate(start), domain.FormatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query series for account %d: %w", accountID, err)
	}
	defer rows.Close()

	series := make([]SeriesPoint, 0)
	for rows.Next() {
		var point SeriesPoint
		var dateStr string
		if err := rows.Scan(&dateStr, &point.TotalValue); err != nil {
			return nil, fmt.Errorf("failed to scan series point: %w", err)
		}
		if point.Date, err = time.Parse(domain.DateFormat, dateStr); err != nil {
			return nil, fmt.Errorf("corrupt summary date %q: %w", dateStr, err)
		}
		series = append(series, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}

	return series, nil
}

// GetSummary reads one persisted summary. It returns nil when the date was never snapshotted.
func (s *Store) GetSummary(ctx context.Context, accountID int64, date time.Time) (*Summary, error) {
	summary := Summary{AccountID: accountID, Date: domain.NormalizeDate(date)}

	err := s.db.QueryRowContext(ctx,
		`SELECT equity_value, bond_etf_value, crypto_value, bond_cash_value, cash_value,
			total_value, position_count, missing_count, stale_count
		 FROM portfolio_summary
		 WHERE account_id = ? AND date = ?`,
		accountID, domain.FormatDate(date),
	).Scan(
		&summary.ByClass.Equity,
		&summary.ByClass.BondETF,
		&summary.ByClass.Crypto,
		&summary.ByClass.BondCash,
		&summary.ByClass.Cash,
		&summary.TotalValue,
		&summary.PositionCount,
		&summary.MissingCount,
		&summary.StaleCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary for account %d: %w", accountID, err)
	}

	return &summary, nil
}

// GetDailyValues reads the persisted position rows for a date.
func (s *Store) GetDailyValues(ctx context.Context, accountID int64, date time.Time) ([]DailyValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position_id, ticker, asset_class, units, price, price_date, position_val, missing_price
		 FROM portfolio_daily_value
		 WHERE account_id = ? AND date = ?
		 ORDER BY position_id ASC`,
		accountID, domain.FormatDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily values for account %d: %w", accountID, err)
	}
	defer rows.Close()

	values := make([]DailyValue, 0)
	for rows.Next() {
		v := DailyValue{AccountID: accountID, Date: domain.NormalizeDate(date)}
		var class string
		var price decimal.NullDecimal
		var priceDate sql.NullString
		var missing int

		if err := rows.Scan(&v.PositionID, &v.Ticker, &class, &v.Units, &price, &priceDate, &v.PositionVal, &missing); err != nil {
			return nil, fmt.Errorf("failed to scan daily value: %w", err)
		}

		v.AssetClass = domain.AssetClass(class)
		v.MissingPrice = missing != 0
		if price.Valid {
			p := price.Decimal
			v.Price = &p
		}
		if priceDate.Valid {
			d, err := time.Parse(domain.DateFormat, priceDate.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt price date %q: %w", priceDate.String, err)
			}
			v.PriceDate = &d
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily values: %w", err)
	}

	return values, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
