package server

import (
	"net/http"

	"github.com/aristath/stockscorer/internal/version"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": version.Version,
		"service": "stockscorer",
	})
}
