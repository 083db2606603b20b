package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAssetClass_Valid(t *testing.T) {
	for _, c := range AssetClasses {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, AssetClass("").Valid())
	assert.False(t, AssetClass("ETF").Valid())
	assert.False(t, AssetClass("stock").Valid())
}

func TestAssetClass_IsMarketPriced(t *testing.T) {
	assert.True(t, AssetClassStock.IsMarketPriced())
	assert.True(t, AssetClassBondETF.IsMarketPriced())
	assert.True(t, AssetClassCrypto.IsMarketPriced())
	assert.False(t, AssetClassCash.IsMarketPriced())
	assert.False(t, AssetClassBondCash.IsMarketPriced())
}

func TestParseAssetClass(t *testing.T) {
	tests := []struct {
		raw      string
		expected AssetClass
		ok       bool
	}{
		{"STOCK", AssetClassStock, true},
		{" bond_etf ", AssetClassBondETF, true},
		{"crypto", AssetClassCrypto, true},
		{"Cash", AssetClassCash, true},
		{"BOND_CASH", AssetClassBondCash, true},
		{"", AssetClass(""), false},
		{"equity", AssetClass("EQUITY"), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, ok := ParseAssetClass(tt.raw)
			assert.Equal(t, tt.expected, c)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestNormalizeTicker(t *testing.T) {
	assert.Equal(t, "BTC-USD", NormalizeTicker(" btc-usd "))
	assert.Equal(t, "AAPL", NormalizeTicker("AAPL"))
}

func TestRoundMoney_HalfUp(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"78.534031", "78.53"},
		{"15.7068", "15.71"},
		{"38200", "38200"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.in))
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestMoneyFloat(t *testing.T) {
	assert.Equal(t, 4.58, MoneyFloat(decimal.RequireFromString("4.5811518")))
}
