package transactions

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundkeep/fundkeep/internal/database"
	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/modules/accounts"
)

func newTestRepo(t *testing.T) (*Repository, string, string) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "books.db"),
		Profile: database.ProfileLedger,
		Name:    "books",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	accountRepo := accounts.NewRepository(db.Conn(), zerolog.Nop())
	accountID := uuid.NewString()
	require.NoError(t, accountRepo.Create(domain.Account{
		ID:             accountID,
		OrgID:          "org-1",
		Name:           "Checking",
		OpeningBalance: decimal.Zero,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}))

	categoryRepo := NewCategoryRepository(db.Conn(), zerolog.Nop())
	categoryID := uuid.NewString()
	require.NoError(t, categoryRepo.Create(domain.Category{
		ID:    categoryID,
		OrgID: "org-1",
		Name:  "Donations",
		Kind:  domain.CategoryKindIncome,
	}))

	return NewRepository(db.Conn(), zerolog.Nop()), accountID, categoryID
}

func testTx(accountID, categoryID string, date time.Time, status domain.TransactionStatus) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Amount:      decimal.RequireFromString("25.50"),
		Direction:   domain.DirectionIncome,
		Status:      status,
		Date:        date,
		Description: "Donation",
		CategoryID:  &categoryID,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo, accountID, categoryID := newTestRepo(t)

	tx := testTx(accountID, categoryID, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), domain.StatusUncleared)
	require.NoError(t, repo.Create(tx))

	got, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.AccountID, got.AccountID)
	assert.True(t, got.Amount.Equal(tx.Amount))
	assert.Equal(t, domain.StatusUncleared, got.Status)
	assert.Equal(t, tx.Date, got.Date)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, categoryID, *got.CategoryID)
	assert.Nil(t, got.SessionID)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.GetByID("missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByAccountChronological(t *testing.T) {
	repo, accountID, categoryID := newTestRepo(t)

	later := testTx(accountID, categoryID, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC), domain.StatusUncleared)
	earlier := testTx(accountID, categoryID, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), domain.StatusUncleared)
	require.NoError(t, repo.Create(later))
	require.NoError(t, repo.Create(earlier))

	txns, err := repo.ListByAccount(accountID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, earlier.ID, txns[0].ID)
	assert.Equal(t, later.ID, txns[1].ID)
}

func TestListCandidatesExcludesReconciled(t *testing.T) {
	repo, accountID, categoryID := newTestRepo(t)

	date := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	uncleared := testTx(accountID, categoryID, date, domain.StatusUncleared)
	cleared := testTx(accountID, categoryID, date, domain.StatusCleared)
	reconciled := testTx(accountID, categoryID, date, domain.StatusReconciled)
	require.NoError(t, repo.Create(uncleared))
	require.NoError(t, repo.Create(cleared))
	require.NoError(t, repo.Create(reconciled))

	candidates, err := repo.ListCandidates(accountID)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, c := range candidates {
		assert.NotEqual(t, reconciled.ID, c.ID)
	}
}

func TestUpdateRejectsReconciled(t *testing.T) {
	repo, accountID, categoryID := newTestRepo(t)

	tx := testTx(accountID, categoryID, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), domain.StatusReconciled)
	require.NoError(t, repo.Create(tx))

	tx.Description = "edited"
	err := repo.Update(tx)

	var pe *domain.PreconditionError
	require.ErrorAs(t, err, &pe)

	got, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donation", got.Description)
}
