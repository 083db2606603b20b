// Package classification maps tickers to asset classes.
//
// A stored hint always wins. Without one, an ordered list of ticker rules is
// evaluated and the first match decides; anything unmatched is a STOCK.
package classification

import (
	"strings"

	"github.com/aristath/folio/internal/domain"
)

// Rule is a single ticker heuristic. Match receives a normalized ticker.
type Rule struct {
	Name  string
	Match func(ticker string) bool
	Class domain.AssetClass
}

// KnownCrypto lists tickers always treated as crypto.
var KnownCrypto = map[string]struct{}{
	"BTC": {}, "ETH": {}, "SOL": {}, "ADA": {}, "XRP": {}, "DOGE": {}, "DOT": {},
	"AVAX": {}, "LTC": {}, "LINK": {}, "MATIC": {}, "BNB": {},
	"BTC-USD": {}, "ETH-USD": {}, "SOL-USD": {}, "ADA-USD": {}, "XRP-USD": {},
	"DOGE-USD": {}, "LTC-USD": {},
}

// KnownBondETFs lists exchange traded bond funds.
var KnownBondETFs = map[string]struct{}{
	"TLT": {}, "IEF": {}, "SHY": {}, "BND": {}, "AGG": {}, "LQD": {}, "HYG": {},
	"TIP": {}, "GOVT": {}, "VGIT": {}, "VGLT": {}, "VGSH": {}, "BIL": {}, "SGOV": {},
	"BNDX": {}, "MUB": {}, "EMB": {}, "JNK": {}, "SCHZ": {}, "VCIT": {},
}

// DefaultRules returns the ordered fallback rules.
//
// The "contains USD" rule is a heuristic kept for compatibility with stored
// portfolios: any ticker with those three letters is classified as crypto,
// including non-crypto funds such as USDU.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "cash-prefix",
			Match: func(t string) bool { return strings.HasPrefix(t, "CASH") },
			Class: domain.AssetClassCash,
		},
		{
			Name:  "bond-cash-prefix",
			Match: func(t string) bool { return strings.HasPrefix(t, "BOND_CASH") },
			Class: domain.AssetClassBondCash,
		},
		{
			Name: "crypto",
			Match: func(t string) bool {
				if _, ok := KnownCrypto[t]; ok {
					return true
				}
				return strings.Contains(t, "USD")
			},
			Class: domain.AssetClassCrypto,
		},
		{
			Name: "bond-etf",
			Match: func(t string) bool {
				_, ok := KnownBondETFs[t]
				return ok
			},
			Class: domain.AssetClassBondETF,
		},
	}
}

// Classifier resolves asset classes. It holds no mutable state.
type Classifier struct {
	rules    []Rule
	fallback domain.AssetClass
}

// New creates a classifier over the given ordered rules.
func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules, fallback: domain.AssetClassStock}
}

// NewDefault creates a classifier with DefaultRules.
func NewDefault() *Classifier {
	return New(DefaultRules())
}

// Classify returns hint when it is a recognised class, otherwise the class of
// the first matching rule, otherwise STOCK.
func (c *Classifier) Classify(ticker string, hint domain.AssetClass) domain.AssetClass {
	if class, ok := domain.ParseAssetClass(string(hint)); ok {
		return class
	}
	return c.ClassifyTicker(ticker)
}

// ClassifyTicker applies only the ticker rules.
func (c *Classifier) ClassifyTicker(ticker string) domain.AssetClass {
	normalized := domain.NormalizeTicker(ticker)
	for _, rule := range c.rules {
		if rule.Match(normalized) {
			return rule.Class
		}
	}
	return c.fallback
}

// MatchingRule returns the name of the rule that decides ticker, or "" for the fallback.
func (c *Classifier) MatchingRule(ticker string) string {
	normalized := domain.NormalizeTicker(ticker)
	for _, rule := range c.rules {
		if rule.Match(normalized) {
			return rule.Name
		}
	}
	return ""
}
