// Package handlers provides HTTP handlers for recurring template operations
// and the manual materializer trigger.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
	"github.com/fundkeep/fundkeep/internal/modules/recurring"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
	"github.com/fundkeep/fundkeep/internal/scheduler"
)

const dateLayout = "2006-01-02"

// Handler handles recurring template HTTP requests
type Handler struct {
	repo         *recurring.Repository
	materializer *recurring.Materializer
	history      *scheduler.History
	log          zerolog.Logger
}

// NewHandler creates a new recurring template handler
func NewHandler(repo *recurring.Repository, m *recurring.Materializer, history *scheduler.History, log zerolog.Logger) *Handler {
	return &Handler{
		repo:         repo,
		materializer: m,
		history:      history,
		log:          log.With().Str("handler", "recurring").Logger(),
	}
}

// HandleCreate handles POST /api/recurring
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID   string `json:"account_id"`
		CategoryID  string `json:"category_id"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Direction   string `json:"direction"`
		StartDate   string `json:"start_date"`
		Rule        string `json:"rule"`
		EndDate     string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.AccountID == "" {
		ve.Add("account_id", "must not be empty")
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		ve.Add("amount", "must be a decimal amount")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		ve.Add("start_date", "must be a date in YYYY-MM-DD form")
	}
	rule := domain.IntervalRule(req.Rule)
	if !rule.Valid() {
		ve.Add("rule", "must be weekly, biweekly, monthly, quarterly or annually")
	}
	var end *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			ve.Add("end_date", "must be a date in YYYY-MM-DD form")
		} else {
			end = &parsed
		}
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	if err := transactions.ValidateInput(amount, domain.Direction(req.Direction), req.Description, req.CategoryID); err != nil {
		h.writeError(w, err)
		return
	}

	template := domain.RecurringTemplate{
		ID:          uuid.NewString(),
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      amount,
		Direction:   domain.Direction(req.Direction),
		StartDate:   start,
		Rule:        rule,
		EndDate:     end,
	}

	if err := h.repo.Create(template); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": template})
}

// HandleList handles GET /api/recurring
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.ListAll()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"templates": templates,
			"count":     len(templates),
		},
	})
}

// HandleGet handles GET /api/recurring/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	template, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": template})
}

// HandlePause handles POST /api/recurring/{id}/pause
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.repo.GetByID(id); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.repo.SetPaused(id, true); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"id": id, "paused": true},
	})
}

// HandleResume handles POST /api/recurring/{id}/resume
//
// Occurrences missed while paused are skipped; the next materialized
// transaction lands on the first valid occurrence at or after today.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.materializer.Resume(id); err != nil {
		h.writeError(w, err)
		return
	}

	template, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": template})
}

// HandleMaterialize handles POST /api/recurring/materialize - the manual
// trigger for the materializer run the scheduler normally performs.
func (h *Handler) HandleMaterialize(w http.ResponseWriter, r *http.Request) {
	result, err := h.materializer.Run()
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

// HandleHistory handles GET /api/recurring/materialize/history
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.history.Recent("materialize_recurring", limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		entry := map[string]interface{}{
			"id":          run.ID,
			"started_at":  run.StartedAt.Format(time.RFC3339),
			"finished_at": run.FinishedAt.Format(time.RFC3339),
			"success":     run.Success,
		}
		if run.Error != "" {
			entry["error"] = run.Error
		}

		var result recurring.Result
		if err := run.DecodePayload(&result); err != nil {
			h.log.Warn().Err(err).Int64("run_id", run.ID).Msg("Failed to decode run payload")
		} else {
			entry["result"] = result
		}

		entries = append(entries, entry)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"runs":  entries,
			"count": len(entries),
		},
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

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var pe *domain.PreconditionError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.As(err, &pe):
		h.writeJSON(w, http.StatusConflict, map[string]interface{}{"error": pe.Error()})
	case errors.Is(err, domain.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error"})
	}
}
