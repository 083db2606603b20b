package portfolio

import (
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/shopspring/decimal"
)

// Position is a holding in an account.
// For CASH and BOND_CASH holdings AvgPrice is the constant value per unit.
type Position struct {
	ID             int64             `json:"id"`
	AccountID      int64             `json:"account_id"`
	Ticker         string            `json:"ticker"`
	AssetClassHint domain.AssetClass `json:"asset_class,omitempty"` // free text, may be empty or unknown
	Units          decimal.Decimal   `json:"units"`
	AvgPrice       decimal.Decimal   `json:"avg_price"`
	OpenedDate     time.Time         `json:"opened_date"`
}

// CostBasis returns units * avg_price.
func (p Position) CostBasis() decimal.Decimal {
	return p.Units.Mul(p.AvgPrice)
}
