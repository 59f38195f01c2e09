package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a reconciliation session.
// in_progress is the only mutable state; finished and cancelled are terminal.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionFinished   SessionStatus = "finished"
	SessionCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether the status is one a session can never leave.
func (s SessionStatus) Terminal() bool {
	return s == SessionFinished || s == SessionCancelled
}

// ReconciliationSession represents one reconciliation of an account against
// a bank statement. At most one in_progress session exists per account
// (enforced by a partial unique index in the books database).
type ReconciliationSession struct {
	ID            string        `json:"id"`
	AccountID     string        `json:"account_id"`
	StatementDate time.Time     `json:"statement_date"`
	// StatementEndingBalance is the bank's figure the ledger must match.
	StatementEndingBalance decimal.Decimal `json:"statement_ending_balance"`
	// StartingBalance is a snapshot of the reconciled balance taken when the
	// session was created. It is never recomputed afterwards.
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Status          SessionStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
