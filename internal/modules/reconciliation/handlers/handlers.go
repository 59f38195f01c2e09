// Package handlers provides HTTP handlers for the reconciliation workflow.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
	"github.com/fundkeep/fundkeep/internal/modules/reconciliation"
)

const dateLayout = "2006-01-02"

// Handler handles reconciliation HTTP requests
type Handler struct {
	service *reconciliation.Service
	log     zerolog.Logger
}

// NewHandler creates a new reconciliation handler
func NewHandler(service *reconciliation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "reconciliation").Logger(),
	}
}

// HandleCreate handles POST /api/reconciliation/sessions
//
// If the account already has an in-progress session, that session is
// returned with 200 instead of 201; the client is redirected, not rejected.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID              string `json:"account_id"`
		StatementDate          string `json:"statement_date"`
		StatementEndingBalance string `json:"statement_ending_balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.AccountID == "" {
		ve.Add("account_id", "must not be empty")
	}
	statementDate, err := time.Parse(dateLayout, req.StatementDate)
	if err != nil {
		ve.Add("statement_date", "must be a date in YYYY-MM-DD form")
	}
	ending, err := money.ParseAmount(req.StatementEndingBalance)
	if err != nil {
		ve.Add("statement_ending_balance", "must be a decimal amount")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	session, created, err := h.service.Create(req.AccountID, statementDate, ending)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	h.writeJSON(w, status, map[string]interface{}{"data": session})
}

// HandleGet handles GET /api/reconciliation/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.service.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": session})
}

// HandleCandidates handles GET /api/reconciliation/sessions/{id}/candidates
func (h *Handler) HandleCandidates(w http.ResponseWriter, r *http.Request, id string) {
	candidates, err := h.service.Candidates(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"candidates": candidates,
			"count":      len(candidates),
		},
	})
}

// HandleSummarize handles POST /api/reconciliation/sessions/{id}/summary
//
// Selection is a pure computation over the posted transaction IDs; nothing
// is persisted.
func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		TransactionIDs []string `json:"transaction_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	summary, err := h.service.Summarize(id, req.TransactionIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": summary})
}

// HandleQuickAdd handles POST /api/reconciliation/sessions/{id}/quick-add
func (h *Handler) HandleQuickAdd(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Amount      string `json:"amount"`
		Direction   string `json:"direction"`
		Description string `json:"description"`
		CategoryID  string `json:"category_id"`
		Date        string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		ve.Add("amount", "must be a decimal amount")
	}
	var date time.Time
	if req.Date != "" {
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			ve.Add("date", "must be a date in YYYY-MM-DD form")
		}
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	tx, err := h.service.QuickAdd(id, reconciliation.QuickAddInput{
		Amount:      amount,
		Direction:   domain.Direction(req.Direction),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Date:        date,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": tx})
}

// HandleFinish handles POST /api/reconciliation/sessions/{id}/finish
func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		AccountID      string   `json:"account_id"`
		TransactionIDs []string `json:"transaction_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Finish(id, req.AccountID, req.TransactionIDs); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":         id,
			"status":     domain.SessionFinished,
			"reconciled": len(req.TransactionIDs),
		},
	})
}

// HandleCancel handles POST /api/reconciliation/sessions/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(id, req.AccountID); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":     id,
			"status": domain.SessionCancelled,
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
