// Package handlers provides HTTP handlers for the cash ledger.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/cash_flows"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles cash ledger HTTP requests
type Handler struct {
	ledger *cash_flows.Repository
	log    zerolog.Logger
}

// NewHandler creates a new cash ledger handler
func NewHandler(ledger *cash_flows.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		ledger: ledger,
		log:    log.With().Str("handler", "cash_flows").Logger(),
	}
}

// RecordRequest is the body of POST /api/accounts/{accountID}/cash
type RecordRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

// TransactionResponse is one ledger entry
type TransactionResponse struct {
	ID          string  `json:"id" msgpack:"id"`
	Amount      float64 `json:"amount" msgpack:"amount"`
	Type        string  `json:"type" msgpack:"type"`
	Date        string  `json:"date" msgpack:"date"`
	Description string  `json:"description,omitempty" msgpack:"description,omitempty"`
}

// HandleRecord handles POST /api/accounts/{accountID}/cash
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	date, err := domain.ParseDate("date", req.Date)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid date")
		return
	}

	id, err := h.ledger.Record(r.Context(), accountID, req.Amount, cash_flows.TransactionType(req.Type), date, req.Description)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to record cash transaction")
		return
	}

	utils.WriteData(w, r, http.StatusCreated, map[string]interface{}{
		"id":         id,
		"account_id": accountID,
	})
}

// HandleGetCash handles GET /api/accounts/{accountID}/cash?date=
// It returns the balance as of date and the full transaction list.
func (h *Handler) HandleGetCash(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	asOf, err := utils.DateQuery(r, "date", domain.Today())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid date")
		return
	}

	balance, err := h.ledger.BalanceAsOf(r.Context(), accountID, asOf)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to get cash balance")
		return
	}

	txs, err := h.ledger.List(r.Context(), accountID)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to list cash transactions")
		return
	}

	transactions := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		transactions = append(transactions, TransactionResponse{
			ID:          tx.ID,
			Amount:      domain.MoneyFloat(tx.Amount),
			Type:        string(tx.Type),
			Date:        domain.FormatDate(tx.Date),
			Description: tx.Description,
		})
	}

	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"account_id":   accountID,
		"as_of":        domain.FormatDate(asOf),
		"balance":      domain.MoneyFloat(balance),
		"transactions": transactions,
	})
}
