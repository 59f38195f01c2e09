package enrollments

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundkeep/fundkeep/internal/database"
	"github.com/fundkeep/fundkeep/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "registry.db"),
		Profile: database.ProfileStandard,
		Name:    "registry",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(db.Conn(), zerolog.Nop())
}

func TestEnrollmentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	enrollment := domain.Enrollment{
		ID:          uuid.NewString(),
		OrgID:       "org-1",
		StudentName: "Alex Rivera",
		FeeAmount:   dec("150.00"),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Create(enrollment))

	got, err := repo.GetByID(enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StudentName, got.StudentName)
	assert.True(t, got.FeeAmount.Equal(enrollment.FeeAmount))

	_, err = repo.GetByID("missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentsDriveStatus(t *testing.T) {
	repo := newTestRepo(t)

	enrollment := domain.Enrollment{
		ID:          uuid.NewString(),
		OrgID:       "org-1",
		StudentName: "Sam Okafor",
		FeeAmount:   dec("100"),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(enrollment))

	assertStatus := func(want domain.PaymentStatus) {
		t.Helper()
		payments, err := repo.ListPayments(enrollment.ID)
		require.NoError(t, err)
		assert.Equal(t, want, Status(enrollment.FeeAmount, TotalPaid(payments)))
	}

	assertStatus(domain.PaymentUnpaid)

	require.NoError(t, repo.AddPayment(domain.Payment{
		ID:           uuid.NewString(),
		EnrollmentID: enrollment.ID,
		Amount:       dec("40"),
		Date:         time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}))
	assertStatus(domain.PaymentPartial)

	require.NoError(t, repo.AddPayment(domain.Payment{
		ID:           uuid.NewString(),
		EnrollmentID: enrollment.ID,
		Amount:       dec("60"),
		Date:         time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}))
	assertStatus(domain.PaymentPaid)

	require.NoError(t, repo.AddPayment(domain.Payment{
		ID:           uuid.NewString(),
		EnrollmentID: enrollment.ID,
		Amount:       dec("0.01"),
		Date:         time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
	}))
	assertStatus(domain.PaymentOverpaid)

	payments, err := repo.ListPayments(enrollment.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	// Oldest first.
	assert.True(t, payments[0].Amount.Equal(dec("40")))
}
