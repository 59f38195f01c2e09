package recurring

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
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
)

func newTestBooksDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "books.db"),
		Profile: database.ProfileLedger,
		Name:    "books",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func seedAccountAndCategory(t *testing.T, db *database.DB) (string, string) {
	t.Helper()

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

	categoryRepo := transactions.NewCategoryRepository(db.Conn(), zerolog.Nop())
	categoryID := uuid.NewString()
	require.NoError(t, categoryRepo.Create(domain.Category{
		ID:    categoryID,
		OrgID: "org-1",
		Name:  "Rent",
		Kind:  domain.CategoryKindExpense,
	}))

	return accountID, categoryID
}

func newTestMaterializer(t *testing.T, db *database.DB) (*Materializer, *Repository, *transactions.Repository) {
	t.Helper()

	templateRepo := NewRepository(db.Conn(), zerolog.Nop())
	txRepo := transactions.NewRepository(db.Conn(), zerolog.Nop())
	return NewMaterializer(templateRepo, txRepo, zerolog.Nop()), templateRepo, txRepo
}

func TestMaterializerCatchesUpElapsedOccurrences(t *testing.T) {
	db := newTestBooksDB(t)
	accountID, categoryID := seedAccountAndCategory(t, db)
	m, templateRepo, txRepo := newTestMaterializer(t, db)

	template := domain.RecurringTemplate{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "Office rent",
		Amount:      decimal.RequireFromString("850.00"),
		Direction:   domain.DirectionExpense,
		StartDate:   day(2026, time.January, 31),
		Rule:        domain.RuleMonthly,
	}
	require.NoError(t, templateRepo.Create(template))

	result, err := m.RunAt(day(2026, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	require.Len(t, result.Templates, 1)
	assert.Equal(t, []string{"2026-01-31", "2026-02-28", "2026-03-31"}, result.Templates[0].Dates)

	txns, err := txRepo.ListByAccount(accountID)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	for _, tx := range txns {
		assert.Equal(t, domain.StatusUncleared, tx.Status)
		assert.True(t, tx.Amount.Equal(template.Amount))
	}

	stored, err := templateRepo.GetByID(template.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastRunDate)
	assert.Equal(t, day(2026, time.March, 31), *stored.LastRunDate)

	// A second run on the same day creates nothing new.
	result, err = m.RunAt(day(2026, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
}

func TestMaterializerRespectsEndDate(t *testing.T) {
	db := newTestBooksDB(t)
	accountID, categoryID := seedAccountAndCategory(t, db)
	m, templateRepo, txRepo := newTestMaterializer(t, db)

	end := day(2026, time.February, 1)
	require.NoError(t, templateRepo.Create(domain.RecurringTemplate{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "Weekly cleaning",
		Amount:      decimal.RequireFromString("40"),
		Direction:   domain.DirectionExpense,
		StartDate:   day(2026, time.January, 20),
		Rule:        domain.RuleWeekly,
		EndDate:     &end,
	}))

	result, err := m.RunAt(day(2026, time.June, 1))
	require.NoError(t, err)
	// Jan 20 and Jan 27; Feb 3 is past the end date.
	assert.Equal(t, 2, result.Created)

	txns, err := txRepo.ListByAccount(accountID)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestMaterializerSkipsPausedTemplates(t *testing.T) {
	db := newTestBooksDB(t)
	accountID, categoryID := seedAccountAndCategory(t, db)
	m, templateRepo, txRepo := newTestMaterializer(t, db)

	require.NoError(t, templateRepo.Create(domain.RecurringTemplate{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "Paused donation",
		Amount:      decimal.RequireFromString("25"),
		Direction:   domain.DirectionIncome,
		StartDate:   day(2026, time.January, 1),
		Rule:        domain.RuleMonthly,
		Paused:      true,
	}))

	result, err := m.RunAt(day(2026, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)

	txns, err := txRepo.ListByAccount(accountID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestResumeSkipsMissedOccurrences(t *testing.T) {
	db := newTestBooksDB(t)
	accountID, categoryID := seedAccountAndCategory(t, db)
	m, templateRepo, txRepo := newTestMaterializer(t, db)

	lastRun := day(2026, time.January, 15)
	templateID := uuid.NewString()
	require.NoError(t, templateRepo.Create(domain.RecurringTemplate{
		ID:          templateID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "Membership dues",
		Amount:      decimal.RequireFromString("15"),
		Direction:   domain.DirectionIncome,
		StartDate:   day(2026, time.January, 15),
		Rule:        domain.RuleMonthly,
		Paused:      true,
		LastRunDate: &lastRun,
	}))

	require.NoError(t, m.ResumeAt(templateID, day(2026, time.April, 1)))

	stored, err := templateRepo.GetByID(templateID)
	require.NoError(t, err)
	assert.False(t, stored.Paused)

	// February and March were missed while paused; the next run materializes
	// only the April occurrence.
	result, err := m.RunAt(day(2026, time.April, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	txns, err := txRepo.ListByAccount(accountID)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, day(2026, time.April, 15), txns[0].Date)
}

func TestResumeRejectsUnpausedTemplate(t *testing.T) {
	db := newTestBooksDB(t)
	accountID, categoryID := seedAccountAndCategory(t, db)
	m, templateRepo, _ := newTestMaterializer(t, db)

	templateID := uuid.NewString()
	require.NoError(t, templateRepo.Create(domain.RecurringTemplate{
		ID:          templateID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Description: "Active template",
		Amount:      decimal.RequireFromString("10"),
		Direction:   domain.DirectionIncome,
		StartDate:   day(2026, time.January, 1),
		Rule:        domain.RuleWeekly,
	}))

	err := m.ResumeAt(templateID, day(2026, time.February, 1))
	require.Error(t, err)

	var pe *domain.PreconditionError
	assert.ErrorAs(t, err, &pe)
}
