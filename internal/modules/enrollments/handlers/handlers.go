// Package handlers provides HTTP handlers for enrollments and payments.
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
	"github.com/fundkeep/fundkeep/internal/modules/enrollments"
)

const dateLayout = "2006-01-02"

// Handler handles enrollment HTTP requests
type Handler struct {
	repo  *enrollments.Repository
	orgID string
	log   zerolog.Logger
}

// NewHandler creates a new enrollment handler
func NewHandler(repo *enrollments.Repository, orgID string, log zerolog.Logger) *Handler {
	return &Handler{
		repo:  repo,
		orgID: orgID,
		log:   log.With().Str("handler", "enrollments").Logger(),
	}
}

// HandleCreate handles POST /api/enrollments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentName string `json:"student_name"`
		FeeAmount   string `json:"fee_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ve := &domain.ValidationError{}
	if req.StudentName == "" {
		ve.Add("student_name", "must not be empty")
	}
	fee, err := money.ParseAmount(req.FeeAmount)
	if err != nil {
		ve.Add("fee_amount", "must be a decimal amount")
	} else if fee.IsNegative() {
		ve.Add("fee_amount", "must not be negative")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	enrollment := domain.Enrollment{
		ID:          uuid.NewString(),
		OrgID:       h.orgID,
		StudentName: req.StudentName,
		FeeAmount:   fee,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.Create(enrollment); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"data": enrollment})
}

// HandleList handles GET /api/enrollments
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListByOrg(h.orgID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"enrollments": list,
			"count":       len(list),
		},
	})
}

// HandleGet handles GET /api/enrollments/{id}
//
// The payment status is derived on every request from the fee and the
// cumulative payments; it is never stored.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	enrollment, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	payments, err := h.repo.ListPayments(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	totalPaid := enrollments.TotalPaid(payments)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"enrollment": enrollment,
			"total_paid": totalPaid,
			"status":     enrollments.Status(enrollment.FeeAmount, totalPaid),
		},
	})
}

// HandleAddPayment handles POST /api/enrollments/{id}/payments
func (h *Handler) HandleAddPayment(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	enrollment, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ve := &domain.ValidationError{}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		ve.Add("amount", "must be a decimal amount")
	} else if !amount.IsPositive() {
		ve.Add("amount", "must be positive")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		ve.Add("date", "must be a date in YYYY-MM-DD form")
	}
	if ve.Any() {
		h.writeError(w, ve)
		return
	}

	payment := domain.Payment{
		ID:           uuid.NewString(),
		EnrollmentID: id,
		Amount:       amount,
		Date:         date,
	}

	if err := h.repo.AddPayment(payment); err != nil {
		h.writeError(w, err)
		return
	}

	payments, err := h.repo.ListPayments(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	totalPaid := enrollments.TotalPaid(payments)

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{
			"payment":    payment,
			"total_paid": totalPaid,
			"status":     enrollments.Status(enrollment.FeeAmount, totalPaid),
		},
	})
}

// HandleListPayments handles GET /api/enrollments/{id}/payments
func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.repo.GetByID(id); err != nil {
		h.writeError(w, err)
		return
	}

	payments, err := h.repo.ListPayments(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"payments":   payments,
			"count":      len(payments),
			"total_paid": enrollments.TotalPaid(payments),
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
