// Package handlers provides HTTP handlers for account operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
	"github.com/fundkeep/fundkeep/internal/modules/accounts"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
)

// Handler handles account HTTP requests
type Handler struct {
	repo   *accounts.Repository
	txRepo *transactions.Repository
	orgID  string
	log    zerolog.Logger
}

// NewHandler creates a new account handler
func NewHandler(repo *accounts.Repository, txRepo *transactions.Repository, orgID string, log zerolog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		txRepo: txRepo,
		orgID:  orgID,
		log:    log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleCreate handles POST /api/accounts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		OpeningBalance string `json:"opening_balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.Name == "" {
		ve.Add("name", "must not be empty")
	}
	opening, err := money.ParseAmount(req.OpeningBalance)
	if err != nil {
		ve.Add("opening_balance", "must be a decimal amount")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	account := domain.Account{
		ID:             uuid.NewString(),
		OrgID:          h.orgID,
		Name:           req.Name,
		OpeningBalance: opening,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.repo.Create(account); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": account})
}

// HandleList handles GET /api/accounts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	accts, err := h.repo.ListByOrg(h.orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"accounts": accts,
			"count":    len(accts),
		},
	})
}

// HandleGet handles GET /api/accounts/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	account, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if account == nil {
		h.writeError(w, domain.ErrNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": account})
}

// HandleSetActive handles PUT /api/accounts/{id}/active
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetActive(id, req.IsActive); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"id": id, "is_active": req.IsActive},
	})
}

// transactionEntry is one row of an account's history together with the
// balance after that transaction is applied.
type transactionEntry struct {
	domain.Transaction
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// HandleTransactions handles GET /api/accounts/{id}/transactions
//
// The history is returned oldest first, each entry carrying the account
// balance immediately after that transaction.
func (h *Handler) HandleTransactions(w http.ResponseWriter, r *http.Request, id string) {
	account, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if account == nil {
		h.writeError(w, domain.ErrNotFound)
		return
	}

	history, err := h.txRepo.ListByAccount(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	running := accounts.RunningBalances(account.OpeningBalance, history)

	entries := make([]transactionEntry, len(history))
	for i, tx := range history {
		entries[i] = transactionEntry{Transaction: tx, RunningBalance: running[tx.ID]}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"account_id":   account.ID,
			"transactions": entries,
			"count":        len(entries),
		},
	})
}

// HandleBalances handles GET /api/accounts/balances
//
// Balances are derived on every request from opening balances and the full
// transaction history; nothing is cached or stored.
func (h *Handler) HandleBalances(w http.ResponseWriter, r *http.Request) {
	accts, err := h.repo.ListByOrg(h.orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var txns []domain.Transaction
	for _, a := range accts {
		history, err := h.txRepo.ListByAccount(a.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		txns = append(txns, history...)
	}

	balances := accounts.Balances(accts, txns)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"balances": balances,
			"count":    len(balances),
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
