// Package cash_flows implements the cash ledger: an ordered list of signed
// deposits and withdrawals per account, and balances derived from it.
//
// The ledger is the only source of cash in a valuation. CASH-classified
// positions are ignored by the snapshot engine so cash is never counted twice.
package cash_flows

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repository handles cash_transactions persistence.
type Repository struct {
	db  *sql.DB        // portfolio.db - cash_transactions table
	log zerolog.Logger // Structured logger
}

// NewRepository creates a new cash ledger repository.
//
// Parameters:
//   - db: Database connection to portfolio.db
//   - log: Structured logger
//
// Returns:
//   - *Repository: Initialized repository instance
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "cash_ledger").Logger(),
	}
}

// Record appends a cash movement to the ledger.
// The amount must be strictly positive; the type carries the sign.
//
// Parameters:
//   - accountID: Owning account
//   - amount: Positive amount
//   - txType: deposit or withdrawal
//   - date: Transaction date (time of day is ignored)
//   - description: Optional free text
//
// Returns:
//   - string: Generated transaction ID
//   - error: ValidationError for bad input, or a storage error
func (r *Repository) Record(
	ctx context.Context,
	accountID int64,
	amount decimal.Decimal,
	txType TransactionType,
	date time.Time,
	description string,
) (string, error) {
	if accountID <= 0 {
		return "", domain.NewValidationError("account_id", "account id must be positive, got %d", accountID)
	}
	if !amount.IsPositive() {
		return "", domain.NewValidationError("amount", "amount must be greater than zero, got %s", amount)
	}
	if !txType.Valid() {
		return "", domain.NewValidationError("type", "unknown transaction type %q", txType)
	}
	if date.IsZero() {
		return "", domain.NewValidationError("transaction_date", "transaction date is required")
	}

	id := uuid.New().String()

	var desc interface{}
	if d := strings.TrimSpace(description); d != "" {
		desc = d
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cash_transactions (id, account_id, amount, type, transaction_date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, accountID, amount.String(), string(txType), domain.FormatDate(date), desc, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record cash transaction for account %d: %w", accountID, err)
	}

	r.log.Info().
		Int64("account_id", accountID).
		Str("type", string(txType)).
		Str("amount", amount.String()).
		Str("date", domain.FormatDate(date)).
		Msg("Recorded cash transaction")

	return id, nil
}

// BalanceAsOf sums every transaction dated on or before asOf.
// Deposits add, withdrawals subtract. An account without transactions has a
// zero balance; that is not an error.
//
// Returns:
//   - decimal.Decimal: Signed balance
//   - error: Error if the query fails
func (r *Repository) BalanceAsOf(ctx context.Context, accountID int64, asOf time.Time) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, type FROM cash_transactions
		 WHERE account_id = ? AND transaction_date <= ?`,
		accountID, domain.FormatDate(asOf),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query cash transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	balance := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		var txType string
		if err := rows.Scan(&amount, &txType); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan cash transaction: %w", err)
		}
		tx := CashTransaction{Amount: amount, Type: TransactionType(txType)}
		balance = balance.Add(tx.Signed())
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating cash transactions: %w", err)
	}

	return balance, nil
}

// List returns the account's transactions ordered by date.
// Same-day transactions keep insertion order.
func (r *Repository) List(ctx context.Context, accountID int64) ([]CashTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, amount, type, transaction_date, COALESCE(description, '')
		 FROM cash_transactions
		 WHERE account_id = ?
		 ORDER BY transaction_date ASC, created_at ASC, rowid ASC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	transactions := make([]CashTransaction, 0)
	for rows.Next() {
		var tx CashTransaction
		var txType, dateStr string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Amount, &txType, &dateStr, &tx.Description); err != nil {
			return nil, fmt.Errorf("failed to scan cash transaction: %w", err)
		}
		tx.Type = TransactionType(txType)
		tx.Date, err = time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt transaction date %q: %w", dateStr, err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash transactions: %w", err)
	}

	return transactions, nil
}
