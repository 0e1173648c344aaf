package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/calculate-score", h.HandleCalculateScore)

	r.Route("/scoring", func(r chi.Router) {
		r.Get("/weights/default", h.HandleGetDefaultWeights)
		r.Get("/rules", h.HandleGetRules)
	})

	r.Post("/metrics/derive", h.HandleDeriveMetrics)
}
