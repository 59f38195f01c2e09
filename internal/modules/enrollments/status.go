// Package enrollments provides enrollment storage and the payment status
// resolver.
package enrollments

import (
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
)

// Status derives the payment status of an enrollment from its fee and the
// cumulative payments recorded against it. The status is never stored; it is
// recomputed whenever the fee or the payment total changes.
//
// A fee of zero (or, defensively, below zero) means the enrollment is
// settled regardless of payments - stray payments against a free enrollment
// do not make it "overpaid". All comparisons go through the tolerant money
// comparator so that summed installments (33.33 three times against 99.99)
// resolve to paid rather than partial.
func Status(fee, totalPaid decimal.Decimal) domain.PaymentStatus {
	if money.Compare(fee, decimal.Zero) != money.Greater {
		return domain.PaymentPaid
	}

	if money.Compare(totalPaid, decimal.Zero) == money.Equal {
		return domain.PaymentUnpaid
	}

	switch money.Compare(totalPaid, fee) {
	case money.Less:
		return domain.PaymentPartial
	case money.Equal:
		return domain.PaymentPaid
	default:
		return domain.PaymentOverpaid
	}
}

// TotalPaid sums a payment list.
func TotalPaid(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
