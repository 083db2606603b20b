// Package snapshots values an account on a date and persists the result.
//
// The Engine is a pure read of positions, prices and ledger cash. The Store
// wraps it and writes the summary and per-position rows for the date in one
// transaction, so repeating an upsert with unchanged inputs leaves the rows
// byte-identical.
package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StalenessPolicy sets how many days old a close may be before it is flagged.
type StalenessPolicy struct {
	CryptoMaxAgeDays int
	EquityMaxAgeDays int
}

// DefaultStalenessPolicy flags crypto after one day and stocks and bond ETFs after three.
func DefaultStalenessPolicy() StalenessPolicy {
	return StalenessPolicy{CryptoMaxAgeDays: 1, EquityMaxAgeDays: 3}
}

// IsStale reports whether a close daysOld days old is too old for class.
func (p StalenessPolicy) IsStale(class domain.AssetClass, daysOld int) bool {
	switch class {
	case domain.AssetClassCrypto:
		return daysOld > p.CryptoMaxAgeDays
	case domain.AssetClassStock, domain.AssetClassBondETF:
		return daysOld > p.EquityMaxAgeDays
	}
	return false
}

// Engine computes portfolio snapshots.
type Engine struct {
	positions  PositionReader
	prices     PriceLookup
	cash       CashBalanceReader
	classifier AssetClassifier
	policy     StalenessPolicy
	log        zerolog.Logger
}

// NewEngine creates a snapshot engine.
func NewEngine(
	positions PositionReader,
	prices PriceLookup,
	cash CashBalanceReader,
	classifier AssetClassifier,
	policy StalenessPolicy,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		positions:  positions,
		prices:     prices,
		cash:       cash,
		classifier: classifier,
		policy:     policy,
		log:        log.With().Str("service", "snapshot_engine").Logger(),
	}
}

// ComputeSnapshot values every position of the account as of asOf.
//
// A ticker without any close on or before asOf is valued at zero and reported
// as missing; it never aborts the snapshot. CASH positions are skipped because
// cash comes only from the ledger. Storage errors are returned as-is.
func (e *Engine) ComputeSnapshot(ctx context.Context, accountID int64, asOf time.Time) (*PortfolioSnapshot, error) {
	asOf = domain.NormalizeDate(asOf)

	positions, err := e.positions.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	snap := &PortfolioSnapshot{
		AccountID:   accountID,
		AsOf:        asOf,
		Positions:   make([]PositionSnapshot, 0, len(positions)),
		Diagnostics: make([]PriceDiagnostic, 0),
	}

	for _, pos := range positions {
		class := e.classifier.Classify(pos.Ticker, pos.AssetClassHint)

		ps := PositionSnapshot{
			PositionID:  pos.ID,
			Ticker:      pos.Ticker,
			AssetClass:  class,
			Units:       pos.Units,
			AvgPrice:    pos.AvgPrice,
			PositionVal: decimal.Zero,
		}

		switch {
		case class == domain.AssetClassCash:
			continue

		case class == domain.AssetClassBondCash:
			price := pos.AvgPrice
			ps.Price = &price
			ps.PositionVal = pos.Units.Mul(price)

		case class.IsMarketPriced():
			point, err := e.prices.LatestPriceOnOrBefore(ctx, pos.Ticker, asOf)
			if err != nil {
				return nil, fmt.Errorf("failed to look up price for %s: %w", pos.Ticker, err)
			}
			if point == nil {
				ps.MissingPrice = true
				snap.Diagnostics = append(snap.Diagnostics, PriceDiagnostic{
					PositionID: pos.ID,
					Ticker:     pos.Ticker,
					AssetClass: class,
					Reason:     ReasonMissing,
				})
				break
			}

			price := point.Close
			priceDate := point.Date
			ps.Price = &price
			ps.PriceDate = &priceDate
			ps.PositionVal = pos.Units.Mul(price)

			daysOld := domain.DaysBetween(priceDate, asOf)
			if e.policy.IsStale(class, daysOld) {
				ps.StalePrice = true
				snap.Diagnostics = append(snap.Diagnostics, PriceDiagnostic{
					PositionID: pos.ID,
					Ticker:     pos.Ticker,
					AssetClass: class,
					Reason:     ReasonStale,
					PriceDate:  &priceDate,
					DaysOld:    daysOld,
				})
			}
		}

		snap.ByClass.add(class, ps.PositionVal)
		snap.Positions = append(snap.Positions, ps)
	}

	cash, err := e.cash.BalanceAsOf(ctx, accountID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash balance: %w", err)
	}
	snap.ByClass.Cash = cash
	snap.TotalValue = snap.ByClass.Total()

	if len(snap.Diagnostics) > 0 {
		e.log.Debug().
			Int64("account_id", accountID).
			Str("as_of", domain.FormatDate(asOf)).
			Int("missing", snap.MissingCount()).
			Int("stale", snap.StaleCount()).
			Msg("Snapshot computed with price diagnostics")
	}

	return snap, nil
}
