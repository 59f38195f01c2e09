package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from an enrollment's fee and its cumulative
// payments. It is never stored; it is recomputed whenever either changes.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverpaid PaymentStatus = "overpaid"
)

// Enrollment represents a fee-based program enrollment (class, membership).
type Enrollment struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	StudentName string          `json:"student_name"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Payment represents a single payment recorded against an enrollment.
type Payment struct {
	ID           string          `json:"id"`
	EnrollmentID string          `json:"enrollment_id"`
	Amount       decimal.Decimal `json:"amount"` // strictly positive
	Date         time.Time       `json:"date"`
}
