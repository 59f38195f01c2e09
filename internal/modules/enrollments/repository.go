package enrollments

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles enrollment and payment rows in registry.db.
type Repository struct {
	db  *sql.DB // registry.db - enrollments + payments tables
	log zerolog.Logger
}

// NewRepository creates a new enrollment repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "enrollments").Logger(),
	}
}

// Create inserts a new enrollment.
func (r *Repository) Create(e domain.Enrollment) error {
	_, err := r.db.Exec(`
		INSERT INTO enrollments (id, org_id, student_name, fee_amount, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.OrgID, e.StudentName, e.FeeAmount.String(),
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment by ID. Returns domain.ErrNotFound for a
// stale identifier.
func (r *Repository) GetByID(id string) (*domain.Enrollment, error) {
	row := r.db.QueryRow(`
		SELECT id, org_id, student_name, fee_amount, created_at
		FROM enrollments WHERE id = ?
	`, id)

	var e domain.Enrollment
	var fee, createdAt string
	err := row.Scan(&e.ID, &e.OrgID, &e.StudentName, &fee, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("enrollment %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment %s: %w", id, err)
	}

	d, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("invalid fee amount %q: %w", fee, err)
	}
	e.FeeAmount = d
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = ts
	}

	return &e, nil
}

// ListByOrg retrieves all enrollments of an organization.
func (r *Repository) ListByOrg(orgID string) ([]domain.Enrollment, error) {
	rows, err := r.db.Query(`
		SELECT id, org_id, student_name, fee_amount, created_at
		FROM enrollments WHERE org_id = ? ORDER BY student_name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		var fee, createdAt string
		if err := rows.Scan(&e.ID, &e.OrgID, &e.StudentName, &fee, &createdAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan enrollment row")
			continue
		}

		d, err := decimal.NewFromString(fee)
		if err != nil {
			r.log.Warn().Err(err).Str("fee", fee).Msg("Invalid fee amount")
			continue
		}
		e.FeeAmount = d
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}

		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}

	return enrollments, nil
}

// AddPayment records a payment against an enrollment.
func (r *Repository) AddPayment(p domain.Payment) error {
	_, err := r.db.Exec(`
		INSERT INTO payments (id, enrollment_id, amount, date)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.EnrollmentID, p.Amount.String(), p.Date.UTC().Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListPayments retrieves the payments of an enrollment, oldest first.
func (r *Repository) ListPayments(enrollmentID string) ([]domain.Payment, error) {
	rows, err := r.db.Query(`
		SELECT id, enrollment_id, amount, date
		FROM payments WHERE enrollment_id = ? ORDER BY date, id
	`, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var amount, date string
		if err := rows.Scan(&p.ID, &p.EnrollmentID, &amount, &date); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan payment row")
			continue
		}

		d, err := decimal.NewFromString(amount)
		if err != nil {
			r.log.Warn().Err(err).Str("amount", amount).Msg("Invalid payment amount")
			continue
		}
		p.Amount = d
		if ts, err := time.Parse(dateLayout, date); err == nil {
			p.Date = ts
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
