package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers advisor routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Post("/analyze-stock", h.HandleAnalyzeStock)
	r.Post("/suggest-weights", h.HandleSuggestWeights)
	r.Post("/verdict", h.HandleVerdict)
	r.Post("/strategy", h.HandleStrategy)
	r.Post("/analyze", h.HandleAnalyze)
}

// RegisterStreamRoutes registers the websocket routes, which must stay outside
// request timeouts and response compression
func (h *Handlers) RegisterStreamRoutes(r chi.Router) {
	r.Get("/analyze/stream", h.HandleAnalyzeStream)
}
