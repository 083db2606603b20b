package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers cash ledger routes under an account router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/cash", h.HandleRecord)
	r.Get("/cash", h.HandleGetCash)
}
