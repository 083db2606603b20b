package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers snapshot routes under an account router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/snapshot", h.HandleGetSnapshot)              // Compute and persist
	r.Get("/snapshot/stored", h.HandleGetStoredSnapshot) // Persisted rows only
	r.Get("/series", h.HandleGetSeries)
}
