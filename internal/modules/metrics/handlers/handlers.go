// Package handlers provides HTTP handlers for derived portfolio metrics.
package handlers

import (
	"net/http"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/metrics"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Handler handles metrics HTTP requests
type Handler struct {
	deriver    *metrics.Deriver
	defaultTop int
	log        zerolog.Logger
}

// NewHandler creates a new metrics handler
func NewHandler(deriver *metrics.Deriver, defaultTop int, log zerolog.Logger) *Handler {
	return &Handler{
		deriver:    deriver,
		defaultTop: defaultTop,
		log:        log.With().Str("handler", "metrics").Logger(),
	}
}

// AllocationDTO holds allocation percentages rounded to two places.
type AllocationDTO struct {
	Stock  float64 `json:"stock" msgpack:"stock"`
	Bond   float64 `json:"bond" msgpack:"bond"`
	Crypto float64 `json:"crypto" msgpack:"crypto"`
	Cash   float64 `json:"cash" msgpack:"cash"`
}

// HoldingDTO is one top holding.
type HoldingDTO struct {
	Ticker      string  `json:"ticker" msgpack:"ticker"`
	AssetClass  string  `json:"asset_class" msgpack:"asset_class"`
	PositionVal float64 `json:"position_val" msgpack:"position_val"`
}

// QualityDTO is the data-quality assessment.
type QualityDTO struct {
	Level            string  `json:"level" msgpack:"level"`
	MissingCostBasis float64 `json:"missing_cost_basis" msgpack:"missing_cost_basis"`
	MissingCount     int     `json:"missing_count" msgpack:"missing_count"`
	StaleCount       int     `json:"stale_count" msgpack:"stale_count"`
}

// MetricsDTO is the response of GET /api/accounts/{accountID}/metrics
type MetricsDTO struct {
	AccountID     int64         `json:"account_id" msgpack:"account_id"`
	AsOfDate      string        `json:"as_of_date" msgpack:"as_of_date"`
	StartingDate  *string       `json:"starting_date" msgpack:"starting_date"`
	StartingValue *float64      `json:"starting_value" msgpack:"starting_value"`
	CurrentValue  float64       `json:"current_value" msgpack:"current_value"`
	GainLoss      *float64      `json:"gain_loss" msgpack:"gain_loss"`
	ReturnPct     *float64      `json:"return_pct" msgpack:"return_pct"`
	Allocation    AllocationDTO `json:"allocation" msgpack:"allocation"`
	TopHoldings   []HoldingDTO  `json:"top_holdings" msgpack:"top_holdings"`
	DataQuality   QualityDTO    `json:"data_quality" msgpack:"data_quality"`
}

func optionalMoney(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := domain.MoneyFloat(*d)
	return &v
}

// NewMetricsDTO converts a report, rounding money and percentages to two places.
func NewMetricsDTO(report *metrics.Report) MetricsDTO {
	dto := MetricsDTO{
		AccountID:     report.AccountID,
		AsOfDate:      domain.FormatDate(report.AsOf),
		StartingValue: optionalMoney(report.StartingValue),
		CurrentValue:  domain.MoneyFloat(report.CurrentValue),
		GainLoss:      optionalMoney(report.GainLoss),
		ReturnPct:     optionalMoney(report.ReturnPct),
		Allocation: AllocationDTO{
			Stock:  domain.MoneyFloat(report.Allocation.Stock),
			Bond:   domain.MoneyFloat(report.Allocation.Bond),
			Crypto: domain.MoneyFloat(report.Allocation.Crypto),
			Cash:   domain.MoneyFloat(report.Allocation.Cash),
		},
		TopHoldings: make([]HoldingDTO, 0, len(report.TopHoldings)),
		DataQuality: QualityDTO{
			Level:            string(report.Quality.Level),
			MissingCostBasis: domain.MoneyFloat(report.Quality.MissingCostBasis),
			MissingCount:     report.Quality.MissingCount,
			StaleCount:       report.Quality.StaleCount,
		},
	}
	if report.StartingDate != nil {
		d := domain.FormatDate(*report.StartingDate)
		dto.StartingDate = &d
	}
	for _, h := range report.TopHoldings {
		dto.TopHoldings = append(dto.TopHoldings, HoldingDTO{
			Ticker:      h.Ticker,
			AssetClass:  string(h.AssetClass),
			PositionVal: domain.MoneyFloat(h.PositionVal),
		})
	}
	return dto
}

// HandleGetMetrics handles GET /api/accounts/{accountID}/metrics?date=&top=
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
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

	top, err := utils.IntQuery(r, "top", h.defaultTop)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid top")
		return
	}

	report, err := h.deriver.Summary(r.Context(), accountID, asOf, top)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to derive metrics")
		return
	}

	utils.WriteData(w, r, http.StatusOK, NewMetricsDTO(report))
}
