// Package handlers provides HTTP handlers for daily price ingestion and lookup.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles price HTTP requests
type Handler struct {
	repo *prices.Repository
	log  zerolog.Logger
}

// NewHandler creates a new price handler
func NewHandler(repo *prices.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "prices").Logger(),
	}
}

// UpsertPricesRequest is the body of POST /api/prices/{ticker}
type UpsertPricesRequest struct {
	Prices []struct {
		Date  string          `json:"date"`
		Close decimal.Decimal `json:"close"`
	} `json:"prices"`
}

// PriceResponse is a single close
type PriceResponse struct {
	Ticker string  `json:"ticker" msgpack:"ticker"`
	Date   string  `json:"date" msgpack:"date"`
	Close  float64 `json:"close" msgpack:"close"`
}

// HandleUpsertPrices handles POST /api/prices/{ticker}
func (h *Handler) HandleUpsertPrices(w http.ResponseWriter, r *http.Request, ticker string) {
	var req UpsertPricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	points := make([]prices.PricePoint, 0, len(req.Prices))
	for _, p := range req.Prices {
		date, err := domain.ParseDate("date", p.Date)
		if err != nil {
			utils.WriteServiceError(w, r, h.log, err, "Invalid price date")
			return
		}
		points = append(points, prices.PricePoint{Date: date, Close: p.Close})
	}

	inserted, err := h.repo.UpsertPrices(r.Context(), ticker, points)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to upsert prices")
		return
	}

	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"ticker":   domain.NormalizeTicker(ticker),
		"received": len(points),
		"inserted": inserted,
	})
}

// HandleGetLatest handles GET /api/prices/{ticker}/latest?date=
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request, ticker string) {
	asOf, err := utils.DateQuery(r, "date", domain.Today())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid date")
		return
	}

	point, err := h.repo.LatestPriceOnOrBefore(r.Context(), ticker, asOf)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to get latest price")
		return
	}
	if point == nil {
		utils.WriteError(w, r, http.StatusNotFound, "No price on or before "+domain.FormatDate(asOf), "")
		return
	}

	utils.WriteData(w, r, http.StatusOK, PriceResponse{
		Ticker: domain.NormalizeTicker(ticker),
		Date:   domain.FormatDate(point.Date),
		Close:  point.Close.InexactFloat64(),
	})
}
