// Package domain provides the core valuation types shared by every module:
// asset classes, calendar dates and validation errors.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AssetClass determines how a holding is priced.
type AssetClass string

const (
	// AssetClassStock is a listed equity priced from daily closes
	AssetClassStock AssetClass = "STOCK"
	// AssetClassBondETF is an exchange traded bond fund priced from daily closes
	AssetClassBondETF AssetClass = "BOND_ETF"
	// AssetClassCrypto trades every day and goes stale fastest
	AssetClassCrypto AssetClass = "CRYPTO"
	// AssetClassCash is tracked through the cash ledger, never as a priced position
	AssetClassCash AssetClass = "CASH"
	// AssetClassBondCash is a bond held at a constant carried value per unit
	AssetClassBondCash AssetClass = "BOND_CASH"
)

// AssetClasses lists every recognised class in reporting order.
var AssetClasses = []AssetClass{
	AssetClassStock,
	AssetClassBondETF,
	AssetClassCrypto,
	AssetClassBondCash,
	AssetClassCash,
}

// Valid reports whether c is one of the five recognised classes.
func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassStock, AssetClassBondETF, AssetClassCrypto, AssetClassCash, AssetClassBondCash:
		return true
	}
	return false
}

// IsMarketPriced reports whether the class needs a daily price lookup.
func (c AssetClass) IsMarketPriced() bool {
	return c == AssetClassStock || c == AssetClassBondETF || c == AssetClassCrypto
}

func (c AssetClass) String() string { return string(c) }

// NormalizeAssetClass turns a stored free-text hint into an AssetClass.
// The result may be invalid; callers check Valid before trusting it.
func NormalizeAssetClass(raw string) AssetClass {
	return AssetClass(strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseAssetClass parses a hint and reports whether it names a recognised class.
func ParseAssetClass(raw string) (AssetClass, bool) {
	c := NormalizeAssetClass(raw)
	return c, c.Valid()
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// MoneyPlaces is the number of decimal places used at the serialization boundary.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to two places, which is round-half-up
// for the positive amounts the engine reports.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MoneyFloat converts a decimal to a display float after rounding.
func MoneyFloat(d decimal.Decimal) float64 {
	return RoundMoney(d).InexactFloat64()
}
