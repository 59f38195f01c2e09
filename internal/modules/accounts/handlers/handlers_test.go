package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
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

func newTestRouter(t *testing.T) (chi.Router, *accounts.Repository, *transactions.Repository, string) {
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
	txRepo := transactions.NewRepository(db.Conn(), zerolog.Nop())

	categoryRepo := transactions.NewCategoryRepository(db.Conn(), zerolog.Nop())
	categoryID := uuid.NewString()
	require.NoError(t, categoryRepo.Create(domain.Category{
		ID:    categoryID,
		OrgID: "org-1",
		Name:  "Donations",
		Kind:  domain.CategoryKindIncome,
	}))

	router := chi.NewRouter()
	NewHandler(accountRepo, txRepo, "org-1", zerolog.Nop()).RegisterRoutes(router)

	return router, accountRepo, txRepo, categoryID
}

func TestHandleTransactionsIncludesRunningBalances(t *testing.T) {
	router, accountRepo, txRepo, categoryID := newTestRouter(t)

	accountID := uuid.NewString()
	require.NoError(t, accountRepo.Create(domain.Account{
		ID:             accountID,
		OrgID:          "org-1",
		Name:           "Checking",
		OpeningBalance: decimal.RequireFromString("1000"),
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}))

	create := func(amount string, dir domain.Direction, date time.Time) {
		require.NoError(t, txRepo.Create(domain.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			Amount:      decimal.RequireFromString(amount),
			Direction:   dir,
			Status:      domain.StatusUncleared,
			Date:        date,
			Description: "entry",
			CategoryID:  &categoryID,
			CreatedAt:   time.Now().UTC(),
		}))
	}

	create("500", domain.DirectionIncome, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	create("200", domain.DirectionExpense, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/"+accountID+"/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			AccountID    string `json:"account_id"`
			Transactions []struct {
				RunningBalance decimal.Decimal `json:"running_balance"`
			} `json:"transactions"`
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, accountID, body.Data.AccountID)
	require.Equal(t, 2, body.Data.Count)
	assert.True(t, body.Data.Transactions[0].RunningBalance.Equal(decimal.RequireFromString("1500")))
	assert.True(t, body.Data.Transactions[1].RunningBalance.Equal(decimal.RequireFromString("1300")))
}

func TestHandleTransactionsUnknownAccount(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts/missing/transactions", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
