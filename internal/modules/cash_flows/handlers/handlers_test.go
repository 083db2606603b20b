package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/cash_flows"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	db := setupTestDB(t)

	handler := NewHandler(cash_flows.NewRepository(db, logger), logger)
	r := chi.NewRouter()
	r.Route("/api/accounts/{accountID}", handler.RegisterRoutes)
	return r
}

func TestHandleRecord(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expectedField  string
	}{
		{"deposit", "/api/accounts/1/cash", `{"amount":"5000","type":"deposit","date":"2025-09-29"}`, http.StatusCreated, ""},
		{"withdrawal", "/api/accounts/1/cash", `{"amount":250.5,"type":"withdrawal","date":"2025-10-02","description":"rent"}`, http.StatusCreated, ""},
		{"zero amount", "/api/accounts/1/cash", `{"amount":"0","type":"deposit","date":"2025-09-29"}`, http.StatusBadRequest, "amount"},
		{"negative amount", "/api/accounts/1/cash", `{"amount":"-5","type":"deposit","date":"2025-09-29"}`, http.StatusBadRequest, "amount"},
		{"unknown type", "/api/accounts/1/cash", `{"amount":"5","type":"interest","date":"2025-09-29"}`, http.StatusBadRequest, "type"},
		{"malformed date", "/api/accounts/1/cash", `{"amount":"5","type":"deposit","date":"29.09.2025"}`, http.StatusBadRequest, "date"},
		{"bad account", "/api/accounts/abc/cash", `{"amount":"5","type":"deposit","date":"2025-09-29"}`, http.StatusBadRequest, "account_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedField != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedField, body["field"])
			}
		})
	}
}

func TestHandleGetCash(t *testing.T) {
	router := newRouter(t)

	for _, body := range []string{
		`{"amount":"5000","type":"deposit","date":"2025-09-29"}`,
		`{"amount":"250.50","type":"withdrawal","date":"2025-10-02"}`,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/accounts/1/cash", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	tests := []struct {
		query   string
		balance float64
	}{
		{"?date=2025-09-28", 0},
		{"?date=2025-10-01", 5000},
		{"?date=2025-10-02", 4749.5},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/accounts/1/cash"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var response struct {
				Data struct {
					Balance      float64               `json:"balance"`
					Transactions []TransactionResponse `json:"transactions"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.balance, response.Data.Balance)
			assert.Len(t, response.Data.Transactions, 2)
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
