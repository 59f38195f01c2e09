package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func TestInitialOccurrence(t *testing.T) {
	start := day(2026, time.March, 1)

	got := InitialOccurrence(start, nil)
	require.NotNil(t, got)
	assert.Equal(t, start, *got)

	// End date before the start: the template can never fire.
	assert.Nil(t, InitialOccurrence(start, datePtr(day(2026, time.February, 1))))

	// End date exactly on the start is valid.
	got = InitialOccurrence(start, datePtr(start))
	require.NotNil(t, got)
	assert.Equal(t, start, *got)
}

func TestNextOccurrenceIsOneIntervalAfterStart(t *testing.T) {
	rules := []domain.IntervalRule{
		domain.RuleWeekly,
		domain.RuleBiweekly,
		domain.RuleMonthly,
		domain.RuleQuarterly,
		domain.RuleAnnually,
	}

	start := day(2026, time.January, 15)
	for _, rule := range rules {
		t.Run(string(rule), func(t *testing.T) {
			got := NextOccurrence(start, rule, start, nil)
			require.NotNil(t, got)
			assert.Equal(t, money.AddInterval(start, rule), *got)
		})
	}
}

func TestNextOccurrenceMonthEndClamp(t *testing.T) {
	start := day(2026, time.January, 31)

	got := NextOccurrence(start, domain.RuleMonthly, start, nil)
	require.NotNil(t, got)
	assert.Equal(t, day(2026, time.February, 28), *got)
}

func TestNextOccurrenceCatchesUpWithoutDrift(t *testing.T) {
	// A monthly template started on the 31st, last fired in January, checked
	// months later: candidates walk from the start date, so the clamp never
	// re-anchors the day of month.
	start := day(2026, time.January, 31)

	got := NextOccurrence(start, domain.RuleMonthly, day(2026, time.April, 30), nil)
	require.NotNil(t, got)
	assert.Equal(t, day(2026, time.May, 31), *got)
}

func TestNextOccurrenceEndDateInclusive(t *testing.T) {
	start := day(2026, time.January, 1)

	// Candidate lands exactly on the end date: valid.
	got := NextOccurrence(start, domain.RuleMonthly, start, datePtr(day(2026, time.February, 1)))
	require.NotNil(t, got)
	assert.Equal(t, day(2026, time.February, 1), *got)

	// End date before the next candidate: exhausted.
	assert.Nil(t, NextOccurrence(start, domain.RuleMonthly, start, datePtr(day(2026, time.January, 20))))
}

func TestResumeOccurrenceFutureStart(t *testing.T) {
	start := day(2026, time.June, 1)
	today := day(2026, time.March, 10)

	got := ResumeOccurrence(start, domain.RuleMonthly, today, nil)
	require.NotNil(t, got)
	assert.Equal(t, start, *got)
}

func TestResumeOccurrenceSkipsMissedOccurrences(t *testing.T) {
	start := day(2026, time.January, 15)
	today := day(2026, time.April, 1)

	got := ResumeOccurrence(start, domain.RuleMonthly, today, nil)
	require.NotNil(t, got)
	assert.Equal(t, day(2026, time.April, 15), *got)
}

func TestResumeOccurrenceLandsOnToday(t *testing.T) {
	start := day(2026, time.January, 15)
	today := day(2026, time.March, 15)

	got := ResumeOccurrence(start, domain.RuleMonthly, today, nil)
	require.NotNil(t, got)
	assert.Equal(t, today, *got)
}

func TestResumeOccurrenceExpired(t *testing.T) {
	start := day(2026, time.January, 15)
	today := day(2026, time.April, 1)

	// Every remaining occurrence is past the end date.
	assert.Nil(t, ResumeOccurrence(start, domain.RuleMonthly, today, datePtr(day(2026, time.March, 20))))

	// Future start past the end date.
	assert.Nil(t, ResumeOccurrence(day(2026, time.June, 1), domain.RuleMonthly, today, datePtr(day(2026, time.May, 1))))
}
