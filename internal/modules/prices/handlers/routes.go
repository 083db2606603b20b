package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices/{ticker}", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			h.HandleUpsertPrices(w, r, chi.URLParam(r, "ticker"))
		})
		r.Get("/latest", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetLatest(w, r, chi.URLParam(r, "ticker"))
		})
	})
}
