// Package domain provides core domain models and types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization represents a tenant. Every record below is owned by exactly
// one organization, and repositories scope all queries by organization ID.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account represents a bookkeeping account (checking, savings, cash box).
type Account struct {
	ID             string          `json:"id"`
	OrgID          string          `json:"org_id"`
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CategoryKind classifies a category as an income or expense bucket.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Category represents a transaction category (donations, rent, payroll).
type Category struct {
	ID    string       `json:"id"`
	OrgID string       `json:"org_id"`
	Name  string       `json:"name"`
	Kind  CategoryKind `json:"kind"`
}
