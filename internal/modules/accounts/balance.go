// Package accounts provides account storage and the balance engine.
package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
)

// AccountBalance is the computed point-in-time balance of one account.
type AccountBalance struct {
	Current      decimal.Decimal `json:"current_balance"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// Balances computes the current balance and income/expense totals for each
// account from its opening balance and the supplied transactions.
//
// Transactions referencing an account not present in the account list are
// skipped without error: callers routinely pass a filtered account subset
// (a single account's page, the active accounts of one organization) along
// with a broader transaction query.
//
// Addition is commutative, so transaction order does not affect the result.
func Balances(accts []domain.Account, txns []domain.Transaction) map[string]AccountBalance {
	result := make(map[string]AccountBalance, len(accts))
	for _, a := range accts {
		result[a.ID] = AccountBalance{
			Current:      a.OpeningBalance,
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
		}
	}

	for _, tx := range txns {
		bal, ok := result[tx.AccountID]
		if !ok {
			continue
		}

		switch tx.Direction {
		case domain.DirectionIncome:
			bal.TotalIncome = bal.TotalIncome.Add(tx.Amount)
			bal.Current = bal.Current.Add(tx.Amount)
		case domain.DirectionExpense:
			bal.TotalExpense = bal.TotalExpense.Add(tx.Amount)
			bal.Current = bal.Current.Sub(tx.Amount)
		}

		result[tx.AccountID] = bal
	}

	return result
}

// RunningBalances returns the balance immediately after each transaction is
// applied, keyed by transaction ID. The caller must supply the transactions
// in chronological order; this function does not sort. If the same
// transaction ID appears twice, the later occurrence wins.
func RunningBalances(opening decimal.Decimal, ordered []domain.Transaction) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(ordered))

	running := opening
	for _, tx := range ordered {
		running = running.Add(tx.Signed())
		balances[tx.ID] = running
	}

	return balances
}

// ReconciledBalance accumulates the opening balance plus only the reconciled
// transactions. This is the account balance as of the last finished
// reconciliation, and seeds the starting balance of the next session.
func ReconciledBalance(opening decimal.Decimal, txns []domain.Transaction) decimal.Decimal {
	balance := opening
	for _, tx := range txns {
		if tx.Status != domain.StatusReconciled {
			continue
		}
		balance = balance.Add(tx.Signed())
	}
	return balance
}
