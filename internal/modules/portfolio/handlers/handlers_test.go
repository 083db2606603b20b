package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionsRoundTrip(t *testing.T) {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)
	handler := NewHandler(portfolio.NewPositionRepository(db, logger), logger)

	router := chi.NewRouter()
	router.Route("/api/accounts/{accountID}", handler.RegisterRoutes)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"stock", `{"ticker":"aapl","asset_class":"STOCK","units":"10","avg_price":"150","opened_date":"2025-09-29"}`, http.StatusCreated},
		{"no hint", `{"ticker":"ETH-USD","units":"2","avg_price":1800,"opened_date":"2025-09-29"}`, http.StatusCreated},
		{"missing ticker", `{"units":"1","avg_price":"1","opened_date":"2025-09-29"}`, http.StatusBadRequest},
		{"malformed date", `{"ticker":"X","units":"1","avg_price":"1","opened_date":"yesterday"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/accounts/3/positions", strings.NewReader(tt.body)))
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts/3/positions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []PositionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 2)
	assert.Equal(t, "AAPL", response.Data[0].Ticker)
	assert.Equal(t, "STOCK", response.Data[0].AssetClass)
	assert.Equal(t, "ETH-USD", response.Data[1].Ticker)
	assert.Empty(t, response.Data[1].AssetClass)
	assert.Equal(t, 1800.0, response.Data[1].AvgPrice)
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
