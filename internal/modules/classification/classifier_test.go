package classification

import (
	"testing"

	"github.com/aristath/folio/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify_HintWins(t *testing.T) {
	c := NewDefault()

	tickers := []string{"AAPL", "BTC-USD", "CASH", "TLT", "BOND_CASH_1", "XYZ"}
	for _, ticker := range tickers {
		for _, hint := range domain.AssetClasses {
			assert.Equal(t, hint, c.Classify(ticker, hint), "ticker %s hint %s", ticker, hint)
		}
	}
}

func TestClassify_HintIsCaseInsensitive(t *testing.T) {
	c := NewDefault()

	assert.Equal(t, domain.AssetClassBondCash, c.Classify("AAPL", domain.AssetClass(" bond_cash ")))
	assert.Equal(t, domain.AssetClassCrypto, c.Classify("TLT", domain.AssetClass("crypto")))
}

func TestClassify_UnrecognisedHintFallsBack(t *testing.T) {
	c := NewDefault()

	assert.Equal(t, domain.AssetClassBondETF, c.Classify("TLT", domain.AssetClass("BOND")))
	assert.Equal(t, domain.AssetClassStock, c.Classify("MSFT", domain.AssetClass("")))
	assert.Equal(t, domain.AssetClassCrypto, c.Classify("ETH", domain.NormalizeAssetClass("coin")))
}

func TestClassifyTicker_Rules(t *testing.T) {
	c := NewDefault()

	tests := []struct {
		ticker   string
		expected domain.AssetClass
		rule     string
	}{
		{"CASH", domain.AssetClassCash, "cash-prefix"},
		{"CASH_EUR", domain.AssetClassCash, "cash-prefix"},
		{"cash", domain.AssetClassCash, "cash-prefix"},
		{"BOND_CASH", domain.AssetClassBondCash, "bond-cash-prefix"},
		{"BOND_CASH_TBILL", domain.AssetClassBondCash, "bond-cash-prefix"},
		{"BTC", domain.AssetClassCrypto, "crypto"},
		{"BTC-USD", domain.AssetClassCrypto, "crypto"},
		{"PEPE-USD", domain.AssetClassCrypto, "crypto"},
		{"TLT", domain.AssetClassBondETF, "bond-etf"},
		{"bnd", domain.AssetClassBondETF, "bond-etf"},
		{"AAPL", domain.AssetClassStock, ""},
		{"B1", domain.AssetClassStock, ""},
		{"", domain.AssetClassStock, ""},
	}

	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.ClassifyTicker(tt.ticker))
			assert.Equal(t, tt.rule, c.MatchingRule(tt.ticker))
		})
	}
}

// The USD substring heuristic misclassifies dollar-index funds; this pins the
// current behaviour so any change to it is deliberate.
func TestClassifyTicker_USDHeuristicKnownWeakness(t *testing.T) {
	c := NewDefault()

	assert.Equal(t, domain.AssetClassCrypto, c.ClassifyTicker("USDU"))
	assert.Equal(t, domain.AssetClassCrypto, c.ClassifyTicker("UUSD"))
	assert.Equal(t, domain.AssetClassStock, c.ClassifyTicker("USO"))
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewDefault()
	tickers := []string{"AAPL", "BTC-USD", "TLT", "CASH", "BOND_CASH", "USDU", "ZZZ"}

	for _, ticker := range tickers {
		first := c.Classify(ticker, "")
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Classify(ticker, ""))
		}
	}
}

func TestRules_InIsolation(t *testing.T) {
	for _, rule := range DefaultRules() {
		t.Run(rule.Name, func(t *testing.T) {
			assert.False(t, rule.Match("AAPL"), "rule %s should not match a plain equity", rule.Name)
			assert.True(t, rule.Class.Valid())
		})
	}
}

func TestNew_CustomRules(t *testing.T) {
	c := New([]Rule{
		{Name: "gold", Match: func(t string) bool { return t == "GLD" }, Class: domain.AssetClassBondCash},
	})

	assert.Equal(t, domain.AssetClassBondCash, c.ClassifyTicker("gld"))
	assert.Equal(t, domain.AssetClassStock, c.ClassifyTicker("BTC"))
}
