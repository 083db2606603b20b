package snapshots

import (
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/shopspring/decimal"
)

// PositionSnapshot is one position valued as of a date.
type PositionSnapshot struct {
	PositionID   int64
	Ticker       string
	AssetClass   domain.AssetClass
	Units        decimal.Decimal
	AvgPrice     decimal.Decimal
	Price        *decimal.Decimal // nil when no price was found
	PriceDate    *time.Time
	PositionVal  decimal.Decimal
	MissingPrice bool
	StalePrice   bool
}

// CostBasis returns units * avg_price.
func (p PositionSnapshot) CostBasis() decimal.Decimal {
	return p.Units.Mul(p.AvgPrice)
}

// ClassTotals holds the per-class sums of a snapshot.
type ClassTotals struct {
	Equity   decimal.Decimal
	BondETF  decimal.Decimal
	Crypto   decimal.Decimal
	BondCash decimal.Decimal
	Cash     decimal.Decimal
}

// Invested is the sum of every non-cash class.
func (c ClassTotals) Invested() decimal.Decimal {
	return c.Equity.Add(c.BondETF).Add(c.Crypto).Add(c.BondCash)
}

// Total is Invested plus ledger cash.
func (c ClassTotals) Total() decimal.Decimal {
	return c.Invested().Add(c.Cash)
}

// Of returns the total for a single class.
func (c ClassTotals) Of(class domain.AssetClass) decimal.Decimal {
	switch class {
	case domain.AssetClassStock:
		return c.Equity
	case domain.AssetClassBondETF:
		return c.BondETF
	case domain.AssetClassCrypto:
		return c.Crypto
	case domain.AssetClassBondCash:
		return c.BondCash
	case domain.AssetClassCash:
		return c.Cash
	}
	return decimal.Zero
}

func (c *ClassTotals) add(class domain.AssetClass, v decimal.Decimal) {
	switch class {
	case domain.AssetClassStock:
		c.Equity = c.Equity.Add(v)
	case domain.AssetClassBondETF:
		c.BondETF = c.BondETF.Add(v)
	case domain.AssetClassCrypto:
		c.Crypto = c.Crypto.Add(v)
	case domain.AssetClassBondCash:
		c.BondCash = c.BondCash.Add(v)
	}
}

// DiagnosticReason explains why a price was flagged.
type DiagnosticReason string

const (
	ReasonMissing DiagnosticReason = "missing"
	ReasonStale   DiagnosticReason = "stale"
)

// PriceDiagnostic reports a position whose price was absent or too old.
// Diagnostics never change the computed values.
type PriceDiagnostic struct {
	PositionID int64
	Ticker     string
	AssetClass domain.AssetClass
	Reason     DiagnosticReason
	PriceDate  *time.Time
	DaysOld    int
}

// PortfolioSnapshot is the full valuation of an account on one date.
type PortfolioSnapshot struct {
	AccountID   int64
	AsOf        time.Time
	Positions   []PositionSnapshot
	ByClass     ClassTotals
	TotalValue  decimal.Decimal
	Diagnostics []PriceDiagnostic
}

// MissingCount returns the number of positions without a price.
func (s *PortfolioSnapshot) MissingCount() int {
	n := 0
	for _, p := range s.Positions {
		if p.MissingPrice {
			n++
		}
	}
	return n
}

// StaleCount returns the number of positions priced from an old close.
func (s *PortfolioSnapshot) StaleCount() int {
	n := 0
	for _, p := range s.Positions {
		if p.StalePrice {
			n++
		}
	}
	return n
}

// Summary is the persisted per-date aggregate of a snapshot.
type Summary struct {
	AccountID     int64
	Date          time.Time
	ByClass       ClassTotals
	TotalValue    decimal.Decimal
	PositionCount int
	MissingCount  int
	StaleCount    int
}

// DailyValue is the persisted value of one position on one date.
type DailyValue struct {
	PositionID   int64
	AccountID    int64
	Date         time.Time
	Ticker       string
	AssetClass   domain.AssetClass
	Units        decimal.Decimal
	Price        *decimal.Decimal
	PriceDate    *time.Time
	PositionVal  decimal.Decimal
	MissingPrice bool
}

// SeriesPoint is one entry of a persisted value series.
type SeriesPoint struct {
	Date       time.Time
	TotalValue decimal.Decimal
}
