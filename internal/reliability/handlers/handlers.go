// Package handlers provides HTTP handlers for remote backups.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/reliability"
)

// Handlers provides HTTP handlers for backup endpoints
type Handlers struct {
	service *reliability.BackupService // nil when backups are disabled
	log     zerolog.Logger
}

// NewHandlers creates a new backup handlers instance. service may be nil.
func NewHandlers(service *reliability.BackupService, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("module", "backup_handlers").Logger(),
	}
}

// RegisterRoutes registers backup routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/backups", h.HandleListBackups)
	r.Post("/backups", h.HandleCreateBackup)
}

// HandleListBackups handles GET /api/backups
func (h *Handlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.writeError(w, reliability.ErrBackupsDisabled.Error(), http.StatusServiceUnavailable)
		return
	}

	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		h.writeError(w, "Failed to list backups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// HandleCreateBackup handles POST /api/backups
func (h *Handlers) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		h.writeError(w, reliability.ErrBackupsDisabled.Error(), http.StatusServiceUnavailable)
		return
	}

	info, err := h.service.CreateAndUploadBackup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		h.writeError(w, "Backup failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, info)
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
