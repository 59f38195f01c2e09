package money

import (
	"testing"
	"time"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddInterval(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		rule domain.IntervalRule
		want time.Time
	}{
		{"weekly", day(2026, time.March, 2), domain.RuleWeekly, day(2026, time.March, 9)},
		{"biweekly", day(2026, time.March, 2), domain.RuleBiweekly, day(2026, time.March, 16)},
		{"monthly mid-month", day(2026, time.March, 15), domain.RuleMonthly, day(2026, time.April, 15)},
		{"monthly clamps to feb 28", day(2026, time.January, 31), domain.RuleMonthly, day(2026, time.February, 28)},
		{"monthly clamps to feb 29 on leap year", day(2024, time.January, 31), domain.RuleMonthly, day(2024, time.February, 29)},
		{"monthly 31st to 30-day month", day(2026, time.May, 31), domain.RuleMonthly, day(2026, time.June, 30)},
		{"monthly year rollover", day(2026, time.December, 10), domain.RuleMonthly, day(2027, time.January, 10)},
		{"quarterly", day(2026, time.January, 15), domain.RuleQuarterly, day(2026, time.April, 15)},
		{"quarterly clamps nov 30 to feb", day(2025, time.November, 30), domain.RuleQuarterly, day(2026, time.February, 28)},
		{"annually", day(2026, time.June, 1), domain.RuleAnnually, day(2027, time.June, 1)},
		{"annually clamps leap day", day(2024, time.February, 29), domain.RuleAnnually, day(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddInterval(tt.date, tt.rule))
		})
	}
}

// Each monthly step clamps against the current date only. A template
// starting Jan 31 walks 31 -> 28 -> 28 -> ... and never returns to the 31st.
func TestAddIntervalDoesNotReanchor(t *testing.T) {
	d := day(2026, time.January, 31)

	d = AddInterval(d, domain.RuleMonthly)
	assert.Equal(t, day(2026, time.February, 28), d)

	d = AddInterval(d, domain.RuleMonthly)
	assert.Equal(t, day(2026, time.March, 28), d)

	d = AddInterval(d, domain.RuleMonthly)
	assert.Equal(t, day(2026, time.April, 28), d)
}

func TestAddIntervalPanicsOnUnknownRule(t *testing.T) {
	assert.Panics(t, func() {
		AddInterval(day(2026, time.January, 1), domain.IntervalRule("fortnightly"))
	})
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2026, time.August, 28, 17, 45, 12, 99, time.UTC)
	assert.Equal(t, day(2026, time.August, 28), DateOnly(ts))
}
