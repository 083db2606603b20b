// Package prices stores daily close prices and answers "latest price as of" lookups.
// It never fetches from vendors; ingestion jobs push closes in through UpsertPrices.
package prices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Repository handles daily_prices persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new price repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "daily_prices").Logger(),
	}
}

// LatestPriceOnOrBefore returns the most recent close dated on or before asOf.
// A nil point with a nil error means no price exists yet.
func (r *Repository) LatestPriceOnOrBefore(ctx context.Context, ticker string, asOf time.Time) (*PricePoint, error) {
	ticker = domain.NormalizeTicker(ticker)

	var dateStr string
	var closePrice decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT price_date, close_price FROM daily_prices
		 WHERE ticker = ? AND price_date <= ?
		 ORDER BY price_date DESC LIMIT 1`,
		ticker, domain.FormatDate(asOf),
	).Scan(&dateStr, &closePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price for %s: %w", ticker, err)
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt price date %q for %s: %w", dateStr, ticker, err)
	}

	return &PricePoint{Date: date, Close: closePrice}, nil
}

// UpsertPrices inserts new closes and overwrites existing ones for the same date.
// It returns how many rows were newly inserted; corrections are not counted.
// The batch is validated up front and written in one transaction.
func (r *Repository) UpsertPrices(ctx context.Context, ticker string, points []PricePoint) (int, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return 0, domain.NewValidationError("ticker", "ticker is required")
	}
	for _, p := range points {
		if p.Date.IsZero() {
			return 0, domain.NewValidationError("date", "price date is required")
		}
		if !p.Close.IsPositive() {
			return 0, domain.NewValidationError("close", "close price must be positive, got %s on %s", p.Close, domain.FormatDate(p.Date))
		}
	}

	inserted := 0
	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		for _, p := range points {
			date := domain.FormatDate(p.Date)
			res, err := tx.ExecContext(ctx,
				`INSERT INTO daily_prices (ticker, price_date, close_price) VALUES (?, ?, ?)
				 ON CONFLICT(ticker, price_date) DO NOTHING`,
				ticker, date, p.Close.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert price %s@%s: %w", ticker, date, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if affected > 0 {
				inserted++
				continue
			}

			if _, err := tx.ExecContext(ctx,
				`UPDATE daily_prices SET close_price = ? WHERE ticker = ? AND price_date = ?`,
				p.Close.String(), ticker, date,
			); err != nil {
				return fmt.Errorf("failed to update price %s@%s: %w", ticker, date, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().
		Str("ticker", ticker).
		Int("received", len(points)).
		Int("inserted", inserted).
		Msg("Upserted daily prices")

	return inserted, nil
}

// GetRange returns closes for ticker between start and end inclusive, oldest first.
func (r *Repository) GetRange(ctx context.Context, ticker string, start, end time.Time) ([]PricePoint, error) {
	ticker = domain.NormalizeTicker(ticker)

	rows, err := r.db.QueryContext(ctx,
		`SELECT price_date, close_price FROM daily_prices
		 WHERE ticker = ? AND price_date BETWEEN ? AND ?
		 ORDER BY price_date ASC`,
		ticker, domain.FormatDate(start), domain.FormatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", ticker, err)
	}
	defer rows.Close()

	points := make([]PricePoint, 0)
	for rows.Next() {
		var dateStr string
		var closePrice decimal.Decimal
		if err := rows.Scan(&dateStr, &closePrice); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt price date %q for %s: %w", dateStr, ticker, err)
		}
		points = append(points, PricePoint{Date: date, Close: closePrice})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return points, nil
}
