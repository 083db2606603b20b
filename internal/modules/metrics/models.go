package metrics

import (
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/shopspring/decimal"
)

// Allocation is the percentage split of a snapshot's total value.
// Bond is the bond ETF share; Cash includes BOND_CASH holdings.
type Allocation struct {
	Stock  decimal.Decimal
	Bond   decimal.Decimal
	Crypto decimal.Decimal
	Cash   decimal.Decimal
}

// Sum returns the total of all four shares.
func (a Allocation) Sum() decimal.Decimal {
	return a.Stock.Add(a.Bond).Add(a.Crypto).Add(a.Cash)
}

// Holding is one entry of a top-holdings list.
type Holding struct {
	PositionID  int64
	Ticker      string
	AssetClass  domain.AssetClass
	Units       decimal.Decimal
	Price       *decimal.Decimal
	PositionVal decimal.Decimal
}

// DataQuality grades how much of a valuation rests on missing prices.
type DataQuality string

const (
	QualityHigh DataQuality = "HIGH"
	QualityLow  DataQuality = "LOW"
)

// Quality is the data-quality assessment of a snapshot.
type Quality struct {
	Level            DataQuality
	MissingCostBasis decimal.Decimal // cost basis of positions valued at zero for lack of a price
	MissingFraction  decimal.Decimal // MissingCostBasis / (total + MissingCostBasis)
	MissingCount     int
	StaleCount       int
}

// Report bundles every derived metric for an account on a date.
type Report struct {
	AccountID     int64
	AsOf          time.Time
	StartingDate  *time.Time
	StartingValue *decimal.Decimal
	CurrentValue  decimal.Decimal
	GainLoss      *decimal.Decimal
	ReturnPct     *decimal.Decimal
	Allocation    Allocation
	TopHoldings   []Holding
	Quality       Quality
}

// SeriesStats are display statistics over a persisted value series.
type SeriesStats struct {
	Points               int
	FirstValue           float64
	LastValue            float64
	Volatility           float64
	AnnualizedVolatility float64
	MaxDrawdown          *float64
	SMAWindow            int
	SMA                  *float64
}
