package cash_flows

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a cash movement.
type TransactionType string

const (
	// TransactionDeposit adds cash to the account
	TransactionDeposit TransactionType = "deposit"
	// TransactionWithdrawal removes cash from the account
	TransactionWithdrawal TransactionType = "withdrawal"
)

// Valid reports whether t is deposit or withdrawal.
func (t TransactionType) Valid() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal
}

// CashTransaction is one ledger entry. Amount is always stored positive;
// the sign comes from Type.
type CashTransaction struct {
	ID          string          `json:"id"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"transaction_date"`
	Description string          `json:"description,omitempty"`
}

// Signed returns the amount with the ledger sign applied.
func (t CashTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}
