// Package handlers provides HTTP handlers for portfolio snapshots and value series.
package handlers

import (
	"net/http"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/metrics"
	"github.com/aristath/folio/internal/modules/snapshots"
	"github.com/aristath/folio/internal/utils"
	"github.com/rs/zerolog"
)

// DefaultSeriesDays is the lookback used when a series request has no start date.
const DefaultSeriesDays = 90

// Handler handles snapshot HTTP requests
type Handler struct {
	store *snapshots.Store
	log   zerolog.Logger
}

// NewHandler creates a new snapshot handler
func NewHandler(store *snapshots.Store, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "snapshots").Logger(),
	}
}

// HandleGetSnapshot handles GET /api/accounts/{accountID}/snapshot?date=
// The snapshot is computed fresh and persisted before it is returned.
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
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

	snap, err := h.store.UpsertSnapshot(r.Context(), accountID, asOf)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to compute snapshot")
		return
	}

	utils.WriteData(w, r, http.StatusOK, NewSnapshotDTO(snap))
}

// HandleGetStoredSnapshot handles GET /api/accounts/{accountID}/snapshot/stored?date=
// It reads the persisted rows only and returns 404 when the date was never snapshotted.
func (h *Handler) HandleGetStoredSnapshot(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	date, err := utils.DateQuery(r, "date", domain.Today())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid date")
		return
	}

	summary, err := h.store.GetSummary(r.Context(), accountID, date)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to read summary")
		return
	}
	if summary == nil {
		utils.WriteError(w, r, http.StatusNotFound, "No snapshot stored for "+domain.FormatDate(date), "")
		return
	}

	values, err := h.store.GetDailyValues(r.Context(), accountID, date)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to read daily values")
		return
	}

	positions := make([]map[string]interface{}, 0, len(values))
	for _, v := range values {
		entry := map[string]interface{}{
			"position_id":   v.PositionID,
			"ticker":        v.Ticker,
			"asset_class":   string(v.AssetClass),
			"units":         v.Units.String(),
			"position_val":  money(v.PositionVal),
			"missing_price": v.MissingPrice,
		}
		if v.Price != nil {
			entry["price"] = v.Price.InexactFloat64()
		}
		if v.PriceDate != nil {
			entry["price_date"] = domain.FormatDate(*v.PriceDate)
		}
		positions = append(positions, entry)
	}

	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"account_id":     accountID,
		"date":           domain.FormatDate(summary.Date),
		"by_class":       NewClassTotalsDTO(summary.ByClass),
		"total_value":    money(summary.TotalValue),
		"position_count": summary.PositionCount,
		"missing_count":  summary.MissingCount,
		"stale_count":    summary.StaleCount,
		"positions":      positions,
	})
}

// HandleGetSeries handles GET /api/accounts/{accountID}/series?start=&end=&sma=
// Only persisted snapshots are returned; nothing is recomputed.
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.AccountIDParam(r)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid account")
		return
	}

	end, err := utils.DateQuery(r, "end", domain.Today())
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid end date")
		return
	}
	start, err := utils.DateQuery(r, "start", end.AddDate(0, 0, -DefaultSeriesDays))
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid start date")
		return
	}
	smaWindow, err := utils.IntQuery(r, "sma", 0)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Invalid sma window")
		return
	}

	series, err := h.store.GetSeries(r.Context(), accountID, start, end)
	if err != nil {
		utils.WriteServiceError(w, r, h.log, err, "Failed to get series")
		return
	}

	points := make([]SeriesPointDTO, 0, len(series))
	for _, p := range series {
		points = append(points, SeriesPointDTO{
			Date:       domain.FormatDate(p.Date),
			TotalValue: money(p.TotalValue),
		})
	}

	stats := metrics.ComputeSeriesStats(series, smaWindow)

	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"start":      domain.FormatDate(start),
		"end":        domain.FormatDate(end),
		"points":     points,
		"stats": map[string]interface{}{
			"points":                stats.Points,
			"volatility":            stats.Volatility,
			"annualized_volatility": stats.AnnualizedVolatility,
			"max_drawdown":          stats.MaxDrawdown,
			"sma_window":            stats.SMAWindow,
			"sma":                   stats.SMA,
		},
	})
}
