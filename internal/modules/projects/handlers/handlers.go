// Package handlers provides HTTP handlers for project documents.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/modules/projects"
)

// Handlers provides HTTP handlers for project endpoints
type Handlers struct {
	repo *projects.Repository
	log  zerolog.Logger
}

// NewHandlers creates a new project handlers instance
func NewHandlers(repo *projects.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "projects_handlers").Logger(),
	}
}

// HandleList handles GET /api/projects
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list projects")
		h.writeError(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, docs)
}

// HandleSave handles POST /api/projects
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var doc projects.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode project")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Upsert(r.Context(), doc); err != nil {
		if errors.Is(err, projects.ErrInvalidDocument) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("id", doc.ID()).Msg("Failed to save project")
		h.writeError(w, "Failed to save project", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleDelete handles DELETE /api/projects/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete project")
		h.writeError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandleSummary handles GET /api/projects/{id}/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := h.repo.Get(r.Context(), id)
	if errors.Is(err, projects.ErrNotFound) {
		h.writeError(w, "Project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to load project")
		h.writeError(w, "Failed to load project", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, projects.Summarize(doc))
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
