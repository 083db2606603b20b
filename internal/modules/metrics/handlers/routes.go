package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers metrics routes under an account router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.HandleGetMetrics)
}
