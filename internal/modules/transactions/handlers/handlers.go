// Package handlers provides HTTP handlers for transaction and category
// operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
)

const dateLayout = "2006-01-02"

// Handler handles transaction HTTP requests
type Handler struct {
	repo       *transactions.Repository
	categories *transactions.CategoryRepository
	orgID      string
	log        zerolog.Logger
}

// NewHandler creates a new transaction handler
func NewHandler(repo *transactions.Repository, categories *transactions.CategoryRepository, orgID string, log zerolog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		categories: categories,
		orgID:      orgID,
		log:        log.With().Str("handler", "transactions").Logger(),
	}
}

type transactionRequest struct {
	AccountID   string `json:"account_id"`
	Amount      string `json:"amount"`
	Direction   string `json:"direction"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// HandleCreate handles POST /api/transactions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
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
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		ve.Add("date", "must be a date in YYYY-MM-DD form")
	}
	status := domain.StatusUncleared
	if req.Status != "" {
		status = domain.TransactionStatus(req.Status)
		if status != domain.StatusUncleared && status != domain.StatusCleared {
			ve.Add("status", "must be uncleared or cleared")
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

	tx := domain.Transaction{
		ID:          uuid.NewString(),
		AccountID:   req.AccountID,
		Amount:      amount,
		Direction:   domain.Direction(req.Direction),
		Status:      status,
		Date:        date,
		Description: req.Description,
		CategoryID:  &req.CategoryID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.Create(tx); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": tx})
}

// HandleList handles GET /api/transactions?account_id=...
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		ve := &domain.ValidationError{}
		ve.Add("account_id", "query parameter is required")
		h.writeError(w, ve)
		return
	}

	txns, err := h.repo.ListByAccount(accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"transactions": txns,
			"count":        len(txns),
		},
	})
}

// HandleGet handles GET /api/transactions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": tx})
}

// HandleUpdate handles PUT /api/transactions/{id}
//
// Reconciled transactions are immutable; the repository rejects the update
// with a precondition error, which surfaces as 409.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ve := &domain.ValidationError{}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		ve.Add("amount", "must be a decimal amount")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		ve.Add("date", "must be a date in YYYY-MM-DD form")
	}
	status := domain.TransactionStatus(req.Status)
	if status != domain.StatusUncleared && status != domain.StatusCleared {
		ve.Add("status", "must be uncleared or cleared")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	if err := transactions.ValidateInput(amount, domain.Direction(req.Direction), req.Description, req.CategoryID); err != nil {
		h.writeError(w, err)
		return
	}

	tx.Amount = amount
	tx.Direction = domain.Direction(req.Direction)
	tx.Status = status
	tx.Date = date
	tx.Description = req.Description
	tx.CategoryID = &req.CategoryID

	if err := h.repo.Update(*tx); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": tx})
}

// HandleCreateCategory handles POST /api/categories
func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.Name == "" {
		ve.Add("name", "must not be empty")
	}
	kind := domain.CategoryKind(req.Kind)
	if kind != domain.CategoryKindIncome && kind != domain.CategoryKindExpense {
		ve.Add("kind", "must be income or expense")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	category := domain.Category{
		ID:    uuid.NewString(),
		OrgID: h.orgID,
		Name:  req.Name,
		Kind:  kind,
	}

	if err := h.categories.Create(category); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": category})
}

// HandleListCategories handles GET /api/categories
func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListByOrg(h.orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"categories": categories,
			"count":      len(categories),
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
