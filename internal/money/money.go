// Package money provides the shared monetary and calendar primitives used by
// every financial computation in FundKeep: tolerant cents-precision
// comparison and interval date arithmetic with end-of-month clamping.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ordering is the result of comparing two monetary amounts.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// String returns a human-readable name for logging.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// Compare compares two monetary amounts at cents precision. Two amounts are
// equal when their difference, rounded to 2 decimal places, is zero. Amounts
// entering the system from external decimal strings may carry more than two
// places; rounding the difference (rather than the operands) keeps the
// comparison symmetric. Every monetary comparison in the application routes
// through this function.
func Compare(a, b decimal.Decimal) Ordering {
	diff := a.Sub(b).Round(2)
	switch {
	case diff.IsNegative():
		return Less
	case diff.IsPositive():
		return Greater
	default:
		return Equal
	}
}

// IsZero reports whether the amount compares equal to zero at cents
// precision.
func IsZero(a decimal.Decimal) bool {
	return Compare(a, decimal.Zero) == Equal
}

// ParseAmount parses an external decimal string into a monetary amount.
// Used at the HTTP boundary; core computations only ever see
// decimal.Decimal values.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// IsCents reports whether the amount is an exact multiple of 0.01, i.e.
// carries no sub-cent precision.
func IsCents(a decimal.Decimal) bool {
	return a.Equal(a.Round(2))
}
