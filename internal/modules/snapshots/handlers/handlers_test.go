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
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/internal/modules/prices"
	"github.com/aristath/folio/internal/modules/snapshots"
	testutil "github.com/aristath/folio/internal/testing"
	"github.com/aristath/folio/internal/utils"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newRouter(t *testing.T) http.Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	testutil.SeedValuationFixture(t, db)

	engine := snapshots.NewEngine(
		portfolio.NewPositionRepository(db, logger),
		prices.NewRepository(db, logger),
		cash_flows.NewRepository(db, logger),
		classification.NewDefault(),
		snapshots.DefaultStalenessPolicy(),
		logger,
	)
	handler := NewHandler(snapshots.NewStore(db, engine, logger), logger)

	r := chi.NewRouter()
	r.Route("/api/accounts/{accountID}", handler.RegisterRoutes)
	return r
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleGetSnapshot(t *testing.T) {
	router := newRouter(t)

	w := get(t, router, "/api/accounts/1/snapshot?date=2025-10-01")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Data SnapshotDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	snap := response.Data
	assert.Equal(t, "2025-10-01", snap.AsOfDate)
	assert.Equal(t, 1750.0, snap.ByClass.EquityValue)
	assert.Equal(t, 450.0, snap.ByClass.BondETFValue)
	assert.Equal(t, 30000.0, snap.ByClass.CryptoValue)
	assert.Equal(t, 1000.0, snap.ByClass.BondCashValue)
	assert.Equal(t, 5000.0, snap.ByClass.Cash)
	assert.Equal(t, 38200.0, snap.TotalValue)
	assert.Len(t, snap.Positions, 4)
	assert.Empty(t, snap.MissingPrices)
}

func TestHandleGetSnapshot_MissingPrices(t *testing.T) {
	router := newRouter(t)

	w := get(t, router, "/api/accounts/1/snapshot?date=2025-09-30")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data SnapshotDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.ElementsMatch(t, []string{"TLT", "BTC-USD"}, response.Data.MissingPrices)
	assert.Equal(t, 7700.0, response.Data.TotalValue)

	for _, p := range response.Data.Positions {
		if p.MissingPrice {
			assert.Nil(t, p.Price)
			assert.Zero(t, p.PositionVal)
		}
	}
}

func TestHandleGetSnapshot_Msgpack(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/1/snapshot?date=2025-10-01", nil)
	req.Header.Set("Accept", utils.ContentTypeMsgpack)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data SnapshotDTO `msgpack:"data"`
	}
	require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 38200.0, response.Data.TotalValue)
}

func TestHandleGetSnapshot_BadInput(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/accounts/1/snapshot?date=2025-13-01").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/accounts/zero/snapshot").Code)
}

func TestHandleGetStoredSnapshot(t *testing.T) {
	router := newRouter(t)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/accounts/1/snapshot/stored?date=2025-10-01").Code)

	require.Equal(t, http.StatusOK, get(t, router, "/api/accounts/1/snapshot?date=2025-10-01").Code)

	w := get(t, router, "/api/accounts/1/snapshot/stored?date=2025-10-01")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data struct {
			TotalValue    float64                  `json:"total_value"`
			PositionCount int                      `json:"position_count"`
			Positions     []map[string]interface{} `json:"positions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 38200.0, response.Data.TotalValue)
	assert.Equal(t, 4, response.Data.PositionCount)
	assert.Len(t, response.Data.Positions, 4)
}

func TestHandleGetSeries(t *testing.T) {
	router := newRouter(t)

	for _, date := range []string{"2025-09-30", "2025-10-01"} {
		require.Equal(t, http.StatusOK, get(t, router, "/api/accounts/1/snapshot?date="+date).Code)
	}

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedPoints int
	}{
		{"full range", "?start=2025-09-01&end=2025-10-31", http.StatusOK, 2},
		{"single day", "?start=2025-10-01&end=2025-10-01", http.StatusOK, 1},
		{"range without snapshots", "?start=2025-11-01&end=2025-11-30", http.StatusOK, 0},
		{"with sma", "?start=2025-09-01&end=2025-10-31&sma=2", http.StatusOK, 2},
		{"start after end", "?start=2025-10-02&end=2025-10-01", http.StatusBadRequest, 0},
		{"bad sma", "?start=2025-09-01&end=2025-10-31&sma=x", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, router, "/api/accounts/1/series"+tt.query)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response struct {
				Data struct {
					Points []SeriesPointDTO        `json:"points"`
					Stats  map[string]interface{} `json:"stats"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Len(t, response.Data.Points, tt.expectedPoints)
			if tt.expectedPoints == 2 {
				assert.Equal(t, "2025-09-30", response.Data.Points[0].Date)
				assert.Equal(t, 7700.0, response.Data.Points[0].TotalValue)
				assert.Equal(t, 38200.0, response.Data.Points[1].TotalValue)
			}
		})
	}
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
