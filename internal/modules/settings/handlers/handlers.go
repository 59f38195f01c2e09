// Package handlers provides HTTP handlers for runtime settings.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/modules/settings"
)

// Handler handles settings HTTP requests
type Handler struct {
	repo *settings.Repository
	log  zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo *settings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetAll handles GET /api/settings
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load settings")
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": all})
}

// HandleGet handles GET /api/settings/{key}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.repo.Get(key)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to load setting")
		http.Error(w, "Failed to load setting", http.StatusInternalServerError)
		return
	}
	if value == nil {
		http.Error(w, "Setting not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"key": key, "value": *value},
	})
}

// HandleSet handles PUT /api/settings/{key}
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Value       string  `json:"value"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.Set(key, req.Value, req.Description); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to store setting")
		http.Error(w, "Failed to store setting", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"key": key, "value": req.Value},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
