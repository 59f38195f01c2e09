package money

import (
	"fmt"
	"time"

	"github.com/fundkeep/fundkeep/internal/domain"
)

// AddInterval advances a date by one recurrence interval. Week-based rules
// add whole days. Month- and year-based rules add calendar months and clamp
// the day-of-month to the last valid day of the target month when the
// original day does not exist there (Jan 31 + 1 month = Feb 28, or Feb 29 in
// leap years).
//
// Clamping is applied per step based on the current date, never re-anchored
// to the original start day: Jan 31 -> Feb 28 -> Mar 28, not Mar 31. This
// changes the long-run occurrence sequence for templates starting on the
// 29th-31st and is deliberately preserved from the original bookkeeping
// behavior.
//
// An unrecognized rule is a programming error and panics.
func AddInterval(t time.Time, rule domain.IntervalRule) time.Time {
	switch rule {
	case domain.RuleWeekly:
		return t.AddDate(0, 0, 7)
	case domain.RuleBiweekly:
		return t.AddDate(0, 0, 14)
	case domain.RuleMonthly:
		return addMonthsClamped(t, 1)
	case domain.RuleQuarterly:
		return addMonthsClamped(t, 3)
	case domain.RuleAnnually:
		return addMonthsClamped(t, 12)
	default:
		panic(fmt.Sprintf("money: unknown interval rule %q", rule))
	}
}

// addMonthsClamped adds calendar months with explicit day clamping.
// time.AddDate normalizes overflow days into the next month (Jan 31 + 1
// month = Mar 2/3), which is exactly the behavior the recurrence sequences
// must not have, so the target year/month/day are computed by hand.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if last := daysInMonth(year, month); day > last {
		day = last
	}

	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// daysInMonth returns the number of days in the given month. Day 0 of the
// following month is the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates a timestamp to a calendar date at UTC midnight. All
// occurrence and statement dates are compared at day granularity.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
