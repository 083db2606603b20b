// Package handlers provides HTTP handlers for position management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles position HTTP requests
type Handler struct {
	positionRepo *portfolio.PositionRepository
	log          zerolog.Logger
}

// NewHandler creates a new position handler
func NewHandler(positionRepo *portfolio.PositionRepository, log zerolog.Logger) *Handler {
	return &Handler{
		positionRepo: positionRepo,
		log:          log.With().Str("handler", "portfolio").Logger(),
	}
}

// CreatePositionRequest is the body of POST /api/accounts/{accountID}/positions
type CreatePositionRequest struct {
	Ticker     string          `json:"ticker"`
	AssetClass string          `json:"asset_class"`
	Units      decimal.Decimal `json:"units"`
	AvgPrice   decimal.Decimal `json:"avg_price"`
	OpenedDate string          `json:"opened_date"`
}

// PositionResponse is a stored position
type PositionResponse struct {
	ID         int64   `json:"id" msgpack:"id"`
	Ticker     string  `json:"ticker" msgpack:"ticker"`
	AssetClass string  `json:"asset_class,omitempty" msgpack:"asset_class,omitempty"`
	Units      string  `json:"units" msgpack:"units"`
	AvgPrice   float64 `json:"avg_price" msgpack:"avg_price"`
	OpenedDate string  `json:"opened_date" msgpack:"opened_date"`
}

func toResponse(p portfolio.Position) PositionResponse {
	return PositionResponse{
		ID:         p.ID,
		Ticker:     p.Ticker,
		AssetClass: string(p.AssetClassHint),
		Units:      p.Units.String(),
		AvgPrice:   p.AvgPrice.InexactFloat64(),
		OpenedDate: domain.FormatDate(p.OpenedDate),
	}
}

// HandleCreatePosition handles POST /api/accounts/{accountID}/positions
func (h *Handler) HandleCreatePosition(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	var req CreatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	opened, err := domain.ParseDate("opened_date", req.OpenedDate)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid opened date")
		return
	}

	created, err := h.positionRepo.Create(r.Context(), portfolio.Position{
		AccountID:      accountID,
		Ticker:         req.Ticker,
		AssetClassHint: domain.AssetClass(req.AssetClass),
		Units:          req.Units,
		AvgPrice:       req.AvgPrice,
		OpenedDate:     opened,
	})
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to create position")
		return
	}

	utils.WriteData(w, r, http.StatusCreated, toResponse(*created))
}

// HandleGetPositions handles GET /api/accounts/{accountID}/positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	positions, err := h.positionRepo.GetByAccount(r.Context(), accountID)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to get positions")
		return
	}

	result := make([]PositionResponse, 0, len(positions))
	for _, p := range positions {
		result = append(result, toResponse(p))
	}

	utils.WriteData(w, r, http.StatusOK, result)
}
