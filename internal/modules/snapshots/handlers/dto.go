package handlers

import (
	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/shopspring/decimal"
)

// ClassTotalsDTO is the per-class breakdown rounded to cents.
type ClassTotalsDTO struct {
	EquityValue   float64 `json:"equity_value" msgpack:"equity_value"`
	BondETFValue  float64 `json:"bond_etf_value" msgpack:"bond_etf_value"`
	CryptoValue   float64 `json:"crypto_value" msgpack:"crypto_value"`
	BondCashValue float64 `json:"bond_cash_value" msgpack:"bond_cash_value"`
	Cash          float64 `json:"cash" msgpack:"cash"`
}

// PositionDTO is a valued position.
type PositionDTO struct {
	PositionID   int64    `json:"position_id" msgpack:"position_id"`
	Ticker       string   `json:"ticker" msgpack:"ticker"`
	AssetClass   string   `json:"asset_class" msgpack:"asset_class"`
	Units        string   `json:"units" msgpack:"units"`
	AvgPrice     float64  `json:"avg_price" msgpack:"avg_price"`
	Price        *float64 `json:"price" msgpack:"price"`
	PriceDate    *string  `json:"price_date" msgpack:"price_date"`
	PositionVal  float64  `json:"position_val" msgpack:"position_val"`
	MissingPrice bool     `json:"missing_price" msgpack:"missing_price"`
	StalePrice   bool     `json:"stale_price" msgpack:"stale_price"`
}

// DiagnosticDTO is a missing or stale price entry.
type DiagnosticDTO struct {
	PositionID int64   `json:"position_id" msgpack:"position_id"`
	Ticker     string  `json:"ticker" msgpack:"ticker"`
	AssetClass string  `json:"asset_class" msgpack:"asset_class"`
	Reason     string  `json:"reason" msgpack:"reason"`
	PriceDate  *string `json:"price_date,omitempty" msgpack:"price_date,omitempty"`
	DaysOld    int     `json:"days_old,omitempty" msgpack:"days_old,omitempty"`
}

// SnapshotDTO is the wire form of a snapshot.
type SnapshotDTO struct {
	AccountID     int64           `json:"account_id" msgpack:"account_id"`
	AsOfDate      string          `json:"as_of_date" msgpack:"as_of_date"`
	Positions     []PositionDTO   `json:"positions" msgpack:"positions"`
	ByClass       ClassTotalsDTO  `json:"by_class" msgpack:"by_class"`
	TotalValue    float64         `json:"total_value" msgpack:"total_value"`
	MissingPrices []string        `json:"missing_prices" msgpack:"missing_prices"`
	Diagnostics   []DiagnosticDTO `json:"diagnostics" msgpack:"diagnostics"`
}

// SeriesPointDTO is one (date, total_value) pair.
type SeriesPointDTO struct {
	Date       string  `json:"date" msgpack:"date"`
	TotalValue float64 `json:"total_value" msgpack:"total_value"`
}

func money(d decimal.Decimal) float64 {
	return domain.MoneyFloat(d)
}

// NewClassTotalsDTO converts class totals.
func NewClassTotalsDTO(c snapshots.ClassTotals) ClassTotalsDTO {
	return ClassTotalsDTO{
		EquityValue:   money(c.Equity),
		BondETFValue:  money(c.BondETF),
		CryptoValue:   money(c.Crypto),
		BondCashValue: money(c.BondCash),
		Cash:          money(c.Cash),
	}
}

// NewSnapshotDTO converts a snapshot, rounding money to two places.
func NewSnapshotDTO(s *snapshots.PortfolioSnapshot) SnapshotDTO {
	dto := SnapshotDTO{
		AccountID:     s.AccountID,
		AsOfDate:      domain.FormatDate(s.AsOf),
		Positions:     make([]PositionDTO, 0, len(s.Positions)),
		ByClass:       NewClassTotalsDTO(s.ByClass),
		TotalValue:    money(s.TotalValue),
		MissingPrices: make([]string, 0),
		Diagnostics:   make([]DiagnosticDTO, 0, len(s.Diagnostics)),
	}

	for _, p := range s.Positions {
		pd := PositionDTO{
			PositionID:   p.PositionID,
			Ticker:       p.Ticker,
			AssetClass:   string(p.AssetClass),
			Units:        p.Units.String(),
			AvgPrice:     money(p.AvgPrice),
			PositionVal:  money(p.PositionVal),
			MissingPrice: p.MissingPrice,
			StalePrice:   p.StalePrice,
		}
		if p.Price != nil {
			v := p.Price.InexactFloat64()
			pd.Price = &v
		}
		if p.PriceDate != nil {
			d := domain.FormatDate(*p.PriceDate)
			pd.PriceDate = &d
		}
		dto.Positions = append(dto.Positions, pd)
	}

	for _, d := range s.Diagnostics {
		dd := DiagnosticDTO{
			PositionID: d.PositionID,
			Ticker:     d.Ticker,
			AssetClass: string(d.AssetClass),
			Reason:     string(d.Reason),
			DaysOld:    d.DaysOld,
		}
		if d.PriceDate != nil {
			date := domain.FormatDate(*d.PriceDate)
			dd.PriceDate = &date
		}
		if d.Reason == snapshots.ReasonMissing {
			dto.MissingPrices = append(dto.MissingPrices, d.Ticker)
		}
		dto.Diagnostics = append(dto.Diagnostics, dd)
	}

	return dto
}
