package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers project routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleSave)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/summary", h.HandleSummary)
	})
}
