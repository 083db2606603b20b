// Package metrics derives returns, allocation, top holdings and data quality
// from persisted portfolio snapshots.
package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/aristath/folio/pkg/formulas"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// LowQualityThreshold is the missing cost-basis fraction above which a snapshot is graded LOW.
	LowQualityThreshold = decimal.RequireFromString("0.2")
)

// SnapshotUpserter computes and persists a snapshot.
type SnapshotUpserter interface {
	UpsertSnapshot(ctx context.Context, accountID int64, asOf time.Time) (*snapshots.PortfolioSnapshot, error)
}

// OpenedDateReader finds the first opened_date of an account.
type OpenedDateReader interface {
	EarliestOpenedDate(ctx context.Context, accountID int64) (time.Time, bool, error)
}

// Deriver computes account metrics on top of the snapshot store.
type Deriver struct {
	store     SnapshotUpserter
	positions OpenedDateReader
	log       zerolog.Logger
}

// NewDeriver creates a metrics deriver.
func NewDeriver(store SnapshotUpserter, positions OpenedDateReader, log zerolog.Logger) *Deriver {
	return &Deriver{
		store:     store,
		positions: positions,
		log:       log.With().Str("service", "metrics").Logger(),
	}
}

// StartingValue is the total value on the earliest position's opened date.
// It is nil when the account has no positions.
func (d *Deriver) StartingValue(ctx context.Context, accountID int64) (*decimal.Decimal, error) {
	value, _, err := d.startingValue(ctx, accountID)
	return value, err
}

func (d *Deriver) startingValue(ctx context.Context, accountID int64) (*decimal.Decimal, *time.Time, error) {
	opened, ok, err := d.positions.EarliestOpenedDate(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, nil
	}

	snap, err := d.store.UpsertSnapshot(ctx, accountID, opened)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to snapshot starting date: %w", err)
	}
	return &snap.TotalValue, &opened, nil
}

// CurrentValue is the total value as of asOf.
func (d *Deriver) CurrentValue(ctx context.Context, accountID int64, asOf time.Time) (decimal.Decimal, error) {
	snap, err := d.store.UpsertSnapshot(ctx, accountID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return snap.TotalValue, nil
}

// ReturnPct is (current - starting) / starting * 100.
// It is nil when there is no starting value or it is not positive.
func (d *Deriver) ReturnPct(ctx context.Context, accountID int64, asOf time.Time) (*decimal.Decimal, error) {
	starting, err := d.StartingValue(ctx, accountID)
	if err != nil {
		return nil, err
	}
	current, err := d.CurrentValue(ctx, accountID, asOf)
	if err != nil {
		return nil, err
	}
	return ReturnPct(starting, current), nil
}

// ReturnPct computes the percentage change from starting to current.
func ReturnPct(starting *decimal.Decimal, current decimal.Decimal) *decimal.Decimal {
	if starting == nil || !starting.IsPositive() {
		return nil
	}
	pct := current.Sub(*starting).Div(*starting).Mul(hundred)
	return &pct
}

// AllocationBreakdown snapshots the account and splits its value by class.
func (d *Deriver) AllocationBreakdown(ctx context.Context, accountID int64, asOf time.Time) (Allocation, error) {
	snap, err := d.store.UpsertSnapshot(ctx, accountID, asOf)
	if err != nil {
		return Allocation{}, err
	}
	return Allocate(snap), nil
}

// Allocate splits a snapshot's total into stock, bond, crypto and cash percentages.
// Every share is zero when the total is not positive.
func Allocate(snap *snapshots.PortfolioSnapshot) Allocation {
	total := snap.TotalValue
	if !total.IsPositive() {
		return Allocation{Stock: decimal.Zero, Bond: decimal.Zero, Crypto: decimal.Zero, Cash: decimal.Zero}
	}

	share := func(v decimal.Decimal) decimal.Decimal {
		return v.Mul(hundred).Div(total)
	}

	c := snap.ByClass
	return Allocation{
		Stock:  share(c.Equity),
		Bond:   share(c.BondETF),
		Crypto: share(c.Crypto),
		Cash:   share(c.Cash.Add(c.BondCash)),
	}
}

// TopHoldings snapshots the account and returns its k largest positions.
func (d *Deriver) TopHoldings(ctx context.Context, accountID int64, asOf time.Time, k int) ([]Holding, error) {
	snap, err := d.store.UpsertSnapshot(ctx, accountID, asOf)
	if err != nil {
		return nil, err
	}
	return Top(snap, k), nil
}

// Top returns the k non-cash positions with the largest value, descending.
// Equal values keep their original position order.
func Top(snap *snapshots.PortfolioSnapshot, k int) []Holding {
	holdings := make([]Holding, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		if p.AssetClass == domain.AssetClassCash {
			continue
		}
		holdings = append(holdings, Holding{
			PositionID:  p.PositionID,
			Ticker:      p.Ticker,
			AssetClass:  p.AssetClass,
			Units:       p.Units,
			Price:       p.Price,
			PositionVal: p.PositionVal,
		})
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].PositionVal.GreaterThan(holdings[j].PositionVal)
	})

	if k < 0 {
		k = 0
	}
	if k < len(holdings) {
		holdings = holdings[:k]
	}
	return holdings
}

// Assess grades the snapshot. It is LOW when the cost basis of positions
// without a price exceeds LowQualityThreshold of total value plus that cost basis.
func Assess(snap *snapshots.PortfolioSnapshot) Quality {
	q := Quality{
		Level:            QualityHigh,
		MissingCostBasis: decimal.Zero,
		MissingFraction:  decimal.Zero,
		MissingCount:     snap.MissingCount(),
		StaleCount:       snap.StaleCount(),
	}

	for _, p := range snap.Positions {
		if p.MissingPrice {
			q.MissingCostBasis = q.MissingCostBasis.Add(p.CostBasis())
		}
	}

	denominator := snap.TotalValue.Add(q.MissingCostBasis)
	if denominator.IsPositive() {
		q.MissingFraction = q.MissingCostBasis.Div(denominator)
	}
	if q.MissingFraction.GreaterThan(LowQualityThreshold) {
		q.Level = QualityLow
	}
	return q
}

// Summary builds the full metrics report for the account as of asOf.
func (d *Deriver) Summary(ctx context.Context, accountID int64, asOf time.Time, topK int) (*Report, error) {
	starting, startDate, err := d.startingValue(ctx, accountID)
	if err != nil {
		return nil, err
	}

	snap, err := d.store.UpsertSnapshot(ctx, accountID, asOf)
	if err != nil {
		return nil, err
	}

	report := &Report{
		AccountID:     accountID,
		AsOf:          snap.AsOf,
		StartingDate:  startDate,
		StartingValue: starting,
		CurrentValue:  snap.TotalValue,
		ReturnPct:     ReturnPct(starting, snap.TotalValue),
		Allocation:    Allocate(snap),
		TopHoldings:   Top(snap, topK),
		Quality:       Assess(snap),
	}
	if starting != nil {
		gain := snap.TotalValue.Sub(*starting)
		report.GainLoss = &gain
	}

	if report.Quality.Level == QualityLow {
		d.log.Warn().
			Int64("account_id", accountID).
			Str("as_of", domain.FormatDate(snap.AsOf)).
			Str("missing_fraction", report.Quality.MissingFraction.StringFixed(4)).
			Msg("Low data quality, many positions lack prices")
	}

	return report, nil
}

// ComputeSeriesStats summarises a persisted value series. smaWindow <= 1 disables the SMA.
func ComputeSeriesStats(series []snapshots.SeriesPoint, smaWindow int) SeriesStats {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.TotalValue.InexactFloat64()
	}

	stats := SeriesStats{Points: len(values), SMAWindow: smaWindow}
	if len(values) == 0 {
		return stats
	}

	stats.FirstValue = values[0]
	stats.LastValue = values[len(values)-1]

	returns := formulas.CalculateReturns(values)
	stats.Volatility = formulas.StdDev(returns)
	stats.AnnualizedVolatility = formulas.AnnualizedVolatility(returns, formulas.CalendarDaysPerYear)
	stats.MaxDrawdown = formulas.MaxDrawdown(values)
	if smaWindow > 1 {
		stats.SMA = formulas.LatestSMA(values, smaWindow)
	}

	return stats
}
