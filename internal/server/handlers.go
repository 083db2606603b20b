package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/folio/internal/utils"
)

// handleHealth reports healthy when the database answers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.container.PortfolioDB.HealthCheck(ctx); err != nil {
		s.log.Error().Err(err).Msg("Health check failed")
		utils.WriteError(w, r, http.StatusServiceUnavailable, "database unavailable", "")
		return
	}

	utils.WriteData(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "folio",
	})
}

// handleListAccounts lists accounts with positions or cash transactions
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.container.PositionRepo.ListAccounts(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, s.log, err, "Failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []int64{}
	}
	utils.WriteData(w, r, http.StatusOK, map[string]interface{}{"accounts": accounts})
}
