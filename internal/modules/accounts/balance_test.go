package accounts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundkeep/fundkeep/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func account(id, opening string) domain.Account {
	return domain.Account{ID: id, Name: id, OpeningBalance: dec(opening), IsActive: true}
}

func tx(id, accountID, amount string, dir domain.Direction, status domain.TransactionStatus) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		AccountID: accountID,
		Amount:    dec(amount),
		Direction: dir,
		Status:    status,
	}
}

func TestBalances(t *testing.T) {
	accts := []domain.Account{account("checking", "1000"), account("savings", "50.25")}
	txns := []domain.Transaction{
		tx("t1", "checking", "500", domain.DirectionIncome, domain.StatusUncleared),
		tx("t2", "checking", "1000", domain.DirectionExpense, domain.StatusCleared),
		tx("t3", "savings", "0.75", domain.DirectionIncome, domain.StatusReconciled),
	}

	balances := Balances(accts, txns)
	require.Len(t, balances, 2)

	checking := balances["checking"]
	assert.True(t, checking.Current.Equal(dec("500")), "got %s", checking.Current)
	assert.True(t, checking.TotalIncome.Equal(dec("500")))
	assert.True(t, checking.TotalExpense.Equal(dec("1000")))

	savings := balances["savings"]
	assert.True(t, savings.Current.Equal(dec("51")), "got %s", savings.Current)
}

func TestBalancesSkipsUnknownAccounts(t *testing.T) {
	accts := []domain.Account{account("checking", "0")}
	txns := []domain.Transaction{
		tx("t1", "checking", "10", domain.DirectionIncome, domain.StatusUncleared),
		tx("t2", "deleted-account", "99", domain.DirectionIncome, domain.StatusUncleared),
	}

	balances := Balances(accts, txns)
	require.Len(t, balances, 1)
	assert.True(t, balances["checking"].Current.Equal(dec("10")))
}

func TestBalancesOrderIndependent(t *testing.T) {
	accts := []domain.Account{account("a", "100")}
	txns := []domain.Transaction{
		tx("t1", "a", "0.10", domain.DirectionIncome, domain.StatusUncleared),
		tx("t2", "a", "0.20", domain.DirectionIncome, domain.StatusUncleared),
		tx("t3", "a", "0.15", domain.DirectionExpense, domain.StatusUncleared),
	}
	reversed := []domain.Transaction{txns[2], txns[1], txns[0]}

	forward := Balances(accts, txns)["a"]
	backward := Balances(accts, reversed)["a"]

	assert.True(t, forward.Current.Equal(backward.Current))
	assert.True(t, forward.Current.Equal(dec("100.15")), "got %s", forward.Current)
}

func TestRunningBalances(t *testing.T) {
	ordered := []domain.Transaction{
		tx("t1", "a", "500", domain.DirectionIncome, domain.StatusUncleared),
		tx("t2", "a", "200", domain.DirectionExpense, domain.StatusUncleared),
		tx("t3", "a", "50", domain.DirectionIncome, domain.StatusUncleared),
	}

	running := RunningBalances(dec("1000"), ordered)
	require.Len(t, running, 3)

	assert.True(t, running["t1"].Equal(dec("1500")))
	assert.True(t, running["t2"].Equal(dec("1300")))
	assert.True(t, running["t3"].Equal(dec("1350")))
}

func TestRunningBalancesDuplicateIDLastWins(t *testing.T) {
	ordered := []domain.Transaction{
		tx("t1", "a", "100", domain.DirectionIncome, domain.StatusUncleared),
		tx("t1", "a", "50", domain.DirectionExpense, domain.StatusUncleared),
	}

	running := RunningBalances(dec("0"), ordered)
	require.Len(t, running, 1)
	assert.True(t, running["t1"].Equal(dec("50")), "got %s", running["t1"])
}

func TestReconciledBalance(t *testing.T) {
	txns := []domain.Transaction{
		tx("t1", "a", "500", domain.DirectionIncome, domain.StatusReconciled),
		tx("t2", "a", "200", domain.DirectionExpense, domain.StatusReconciled),
		tx("t3", "a", "999", domain.DirectionIncome, domain.StatusUncleared),
		tx("t4", "a", "999", domain.DirectionIncome, domain.StatusCleared),
	}

	got := ReconciledBalance(dec("100"), txns)
	assert.True(t, got.Equal(dec("400")), "got %s", got)
}

func TestReconciledBalanceNoHistory(t *testing.T) {
	got := ReconciledBalance(dec("250.50"), nil)
	assert.True(t, got.Equal(dec("250.50")))
}
