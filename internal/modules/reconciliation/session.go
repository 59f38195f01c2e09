// Package reconciliation implements the reconciliation session state machine:
// matching ledger transactions against a bank statement, admitting ad-hoc
// adjustment transactions, and finishing or cancelling the session.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
)

// SelectionSummary is the running state of a matching pass: the starting
// balance plus the signed sum of the currently selected transactions,
// compared against the statement's ending balance. Selection mutates no
// balances; this is purely what the UI shows while the user toggles
// transactions in and out of the reconciling set.
type SelectionSummary struct {
	StartingBalance        decimal.Decimal `json:"starting_balance"`
	SelectedTotal          decimal.Decimal `json:"selected_total"`
	RunningBalance         decimal.Decimal `json:"running_balance"`
	StatementEndingBalance decimal.Decimal `json:"statement_ending_balance"`
	Difference             decimal.Decimal `json:"difference"`
	Balanced               bool            `json:"balanced"`
}

// Summarize computes the selection summary for a session and the selected
// subset of its candidate transactions.
func Summarize(session domain.ReconciliationSession, selected []domain.Transaction) SelectionSummary {
	total := decimal.Zero
	for _, tx := range selected {
		total = total.Add(tx.Signed())
	}

	running := session.StartingBalance.Add(total)

	return SelectionSummary{
		StartingBalance:        session.StartingBalance,
		SelectedTotal:          total,
		RunningBalance:         running,
		StatementEndingBalance: session.StatementEndingBalance,
		Difference:             session.StatementEndingBalance.Sub(running),
		Balanced:               money.Compare(running, session.StatementEndingBalance) == money.Equal,
	}
}
