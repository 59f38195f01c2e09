package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntervalRule is the closed set of recurrence intervals a template may use.
// An unrecognized rule is a programming error, not a validation failure.
type IntervalRule string

const (
	RuleWeekly    IntervalRule = "weekly"
	RuleBiweekly  IntervalRule = "biweekly"
	RuleMonthly   IntervalRule = "monthly"
	RuleQuarterly IntervalRule = "quarterly"
	RuleAnnually  IntervalRule = "annually"
)

// Valid reports whether the rule is a member of the closed set.
func (r IntervalRule) Valid() bool {
	switch r {
	case RuleWeekly, RuleBiweekly, RuleMonthly, RuleQuarterly, RuleAnnually:
		return true
	}
	return false
}

// RecurringTemplate generates occurrence dates for transactions that repeat
// on a fixed interval. The template owns no transactions directly; the
// materializer job turns due occurrences into ledger entries.
type RecurringTemplate struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	CategoryID  string          `json:"category_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	StartDate   time.Time       `json:"start_date"`
	Rule        IntervalRule    `json:"rule"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Paused      bool            `json:"paused"`
	// LastRunDate is the most recent occurrence the materializer turned into
	// a transaction. Nil until the template fires for the first time.
	LastRunDate *time.Time `json:"last_run_date,omitempty"`
}
