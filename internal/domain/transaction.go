package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether a transaction adds to or subtracts from an
// account balance. Amounts are always stored non-negative; the direction
// carries the sign.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// TransactionStatus is the reconciliation lifecycle of a transaction.
type TransactionStatus string

const (
	// StatusUncleared - recorded in the ledger, not yet seen on a statement.
	StatusUncleared TransactionStatus = "uncleared"
	// StatusCleared - seen on a statement but not reconciled yet.
	StatusCleared TransactionStatus = "cleared"
	// StatusReconciled - permanently matched to a finished reconciliation
	// session. Reconciled transactions are immutable.
	StatusReconciled TransactionStatus = "reconciled"
)

// Transaction represents a single ledger entry against an account.
type Transaction struct {
	ID          string            `json:"id"`
	AccountID   string            `json:"account_id"`
	Amount      decimal.Decimal   `json:"amount"` // non-negative; sign via Direction
	Direction   Direction         `json:"direction"`
	Status      TransactionStatus `json:"status"`
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	CategoryID  *string           `json:"category_id,omitempty"`
	SessionID   *string           `json:"session_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Signed returns the transaction amount signed by its direction: positive
// for income, negative for expense.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
