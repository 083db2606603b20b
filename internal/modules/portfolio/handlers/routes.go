package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers position routes under an account router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/positions", h.HandleGetPositions)
	r.Post("/positions", h.HandleCreatePosition)
}
