package transactions

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
)

// maxDescriptionLen bounds transaction descriptions.
const maxDescriptionLen = 255

// ValidateInput checks the shape constraints shared by the transaction form
// and the reconciliation quick-add: a strictly positive amount at cent
// precision, a known direction, a non-empty bounded description, and a
// category reference. Returns nil when everything passes; otherwise a
// field-level validation error with every failure listed.
func ValidateInput(amount decimal.Decimal, direction domain.Direction, description, categoryID string) error {
	ve := &domain.ValidationError{}

	if !amount.IsPositive() {
		ve.Add("amount", "must be strictly positive")
	} else if !money.IsCents(amount) {
		ve.Add("amount", "must be a multiple of 0.01")
	}

	if !direction.Valid() {
		ve.Add("direction", "must be income or expense")
	}

	if description == "" {
		ve.Add("description", "must not be empty")
	} else if utf8.RuneCountInString(description) > maxDescriptionLen {
		ve.Add("description", "must be at most 255 characters")
	}

	if categoryID == "" {
		ve.Add("category_id", "is required")
	}

	if ve.Any() {
		return ve
	}
	return nil
}
