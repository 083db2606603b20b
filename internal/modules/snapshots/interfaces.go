package snapshots

import (
	"context"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/shopspring/decimal"
)

// PositionReader reads an account's positions in their original order.
type PositionReader interface {
	GetByAccount(ctx context.Context, accountID int64) ([]portfolio.Position, error)
}

// PriceLookup answers "latest close on or before" queries.
type PriceLookup interface {
	LatestPriceOnOrBefore(ctx context.Context, ticker string, asOf time.Time) (*prices.PricePoint, error)
}

// CashBalanceReader returns the ledger cash balance as of a date.
type CashBalanceReader interface {
	BalanceAsOf(ctx context.Context, accountID int64, asOf time.Time) (decimal.Decimal, error)
}

// AssetClassifier resolves the pricing class of a holding.
type AssetClassifier interface {
	Classify(ticker string, hint domain.AssetClass) domain.AssetClass
}

// SnapshotComputer produces a fresh valuation.
type SnapshotComputer interface {
	ComputeSnapshot(ctx context.Context, accountID int64, asOf time.Time) (*PortfolioSnapshot, error)
}
