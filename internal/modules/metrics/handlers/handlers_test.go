package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/cash_flows"
	"github.com/aristath/folio/internal/modules/classification"
	"github.com/aristath/folio/internal/modules/metrics"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/aristath/folio/internal/modules/snapshots"
	testutil "github.com/aristath/folio/internal/testing"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	testutil.SeedValuationFixture(t, db)

	positions := portfolio.NewPositionRepository(db, logger)
	engine := snapshots.NewEngine(
		positions,
		prices.NewRepository(db, logger),
		cash_flows.NewRepository(db, logger),
		classification.NewDefault(),
		snapshots.DefaultStalenessPolicy(),
		logger,
	)
	store := snapshots.NewStore(db, engine, logger)
	handler := NewHandler(metrics.NewDeriver(store, positions, logger), 5, logger)

	r := chi.NewRouter()
	r.Route("/api/accounts/{accountID}", handler.RegisterRoutes)
	return r
}

func getMetrics(t *testing.T, router http.Handler, query string) (int, MetricsDTO) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts/1/metrics"+query, nil))

	var response struct {
		Data MetricsDTO `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response.Data
}

func TestHandleGetMetrics_Fixture(t *testing.T) {
	router := newRouter(t)

	status, m := getMetrics(t, router, "?date=2025-10-01&top=2")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 38200.0, m.CurrentValue)
	require.NotNil(t, m.StartingDate)
	assert.Equal(t, "2025-09-29", *m.StartingDate)
	require.NotNil(t, m.StartingValue)
	assert.Equal(t, 6000.0, *m.StartingValue)
	require.NotNil(t, m.ReturnPct)
	assert.Equal(t, 536.67, *m.ReturnPct)

	assert.Equal(t, AllocationDTO{Stock: 4.58, Bond: 1.18, Crypto: 78.53, Cash: 15.71}, m.Allocation)

	require.Len(t, m.TopHoldings, 2)
	assert.Equal(t, HoldingDTO{Ticker: "BTC-USD", AssetClass: "CRYPTO", PositionVal: 30000}, m.TopHoldings[0])
	assert.Equal(t, HoldingDTO{Ticker: "AAPL", AssetClass: "STOCK", PositionVal: 1750}, m.TopHoldings[1])
	assert.Equal(t, "HIGH", m.DataQuality.Level)
}

func TestHandleGetMetrics_DefaultTopAndLowQuality(t *testing.T) {
	router := newRouter(t)

	status, m := getMetrics(t, router, "?date=2025-09-30")
	require.Equal(t, http.StatusOK, status)

	assert.Len(t, m.TopHoldings, 4, "default top covers every holding of the fixture")
	assert.Equal(t, "LOW", m.DataQuality.Level)
	assert.Equal(t, 2, m.DataQuality.MissingCount)
}

func TestHandleGetMetrics_BadInput(t *testing.T) {
	router := newRouter(t)

	status, _ := getMetrics(t, router, "?date=not-a-date")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getMetrics(t, router, "?top=-3")
	assert.Equal(t, http.StatusBadRequest, status)
}

// setupTestDB creates an in-memory SQLite database with the portfolio schema
func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := database.Schema("portfolio")
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}
