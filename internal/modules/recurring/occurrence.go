// Package recurring provides the recurrence engine and the materializer that
// turns due template occurrences into ledger transactions.
package recurring

import (
	"time"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
)

// InitialOccurrence returns the first occurrence of a template: the start
// date itself, unless an end date exists and falls strictly before it, in
// which case the template can never fire and nil is returned.
func InitialOccurrence(start time.Time, end *time.Time) *time.Time {
	start = money.DateOnly(start)
	if end != nil && money.DateOnly(*end).Before(start) {
		return nil
	}
	return &start
}

// NextOccurrence returns the first occurrence strictly after the given date.
// Candidates are generated by walking forward from the start date one
// interval at a time, so a call after many elapsed intervals lands on the
// correct calendar date rather than drifting (month-end clamping is applied
// per step, see money.AddInterval).
//
// An end date is an inclusive ceiling: a candidate exactly on the end date
// is valid, one past it yields nil. A nil end date means unbounded.
func NextOccurrence(start time.Time, rule domain.IntervalRule, after time.Time, end *time.Time) *time.Time {
	candidate := money.DateOnly(start)
	after = money.DateOnly(after)

	for !candidate.After(after) {
		candidate = money.AddInterval(candidate, rule)
	}

	if end != nil && candidate.After(money.DateOnly(*end)) {
		return nil
	}
	return &candidate
}

// ResumeOccurrence returns the occurrence a template resumes on after being
// un-paused: the start date when it is still in the future, otherwise the
// first occurrence on or after today. Occurrences missed while paused are
// intentionally skipped - resuming never materializes into the past.
//
// The end-date checks of InitialOccurrence and NextOccurrence both apply: a
// future start past the end date yields nil, as does a resumed candidate
// past it.
func ResumeOccurrence(start time.Time, rule domain.IntervalRule, today time.Time, end *time.Time) *time.Time {
	start = money.DateOnly(start)
	today = money.DateOnly(today)

	if !start.Before(today) {
		if end != nil && start.After(money.DateOnly(*end)) {
			return nil
		}
		return &start
	}

	candidate := start
	for candidate.Before(today) {
		candidate = money.AddInterval(candidate, rule)
	}

	if end != nil && candidate.After(money.DateOnly(*end)) {
		return nil
	}
	return &candidate
}
