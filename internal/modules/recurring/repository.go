package recurring

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles recurring template rows in books.db.
type Repository struct {
	db  *sql.DB // books.db - recurring_templates table
	log zerolog.Logger
}

// NewRepository creates a new recurring template repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "recurring").Logger(),
	}
}

// Create inserts a new template.
func (r *Repository) Create(t domain.RecurringTemplate) error {
	_, err := r.db.Exec(`
		INSERT INTO recurring_templates
			(id, account_id, category_id, description, amount, direction,
			 start_date, rule, end_date, paused, last_run_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.AccountID, t.CategoryID, t.Description, t.Amount.String(),
		string(t.Direction), t.StartDate.UTC().Format(dateLayout), string(t.Rule),
		formatDatePtr(t.EndDate), boolToInt(t.Paused), formatDatePtr(t.LastRunDate))
	if err != nil {
		return fmt.Errorf("failed to insert recurring template: %w", err)
	}
	return nil
}

// GetByID retrieves a template by ID. Returns domain.ErrNotFound for a stale
// identifier.
func (r *Repository) GetByID(id string) (*domain.RecurringTemplate, error) {
	row := r.db.QueryRow(selectColumns+" FROM recurring_templates WHERE id = ?", id)

	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recurring template %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring template %s: %w", id, err)
	}
	return t, nil
}

// ListActive retrieves all templates that are not paused. These are the
// templates the materializer considers on each run.
func (r *Repository) ListActive() ([]domain.RecurringTemplate, error) {
	return r.list(selectColumns + " FROM recurring_templates WHERE paused = 0 ORDER BY start_date, id")
}

// ListAll retrieves every template, paused or not.
func (r *Repository) ListAll() ([]domain.RecurringTemplate, error) {
	return r.list(selectColumns + " FROM recurring_templates ORDER BY start_date, id")
}

// SetPaused updates the paused marker.
func (r *Repository) SetPaused(id string, paused bool) error {
	res, err := r.db.Exec("UPDATE recurring_templates SET paused = ? WHERE id = ?", boolToInt(paused), id)
	if err != nil {
		return fmt.Errorf("failed to update recurring template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetLastRunDate advances (or clears) the last-materialized date.
func (r *Repository) SetLastRunDate(id string, lastRun *time.Time) error {
	res, err := r.db.Exec("UPDATE recurring_templates SET last_run_date = ? WHERE id = ?",
		formatDatePtr(lastRun), id)
	if err != nil {
		return fmt.Errorf("failed to update recurring template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

const selectColumns = `
	SELECT id, account_id, category_id, description, amount, direction,
	       start_date, rule, end_date, paused, last_run_date`

func (r *Repository) list(query string, args ...interface{}) ([]domain.RecurringTemplate, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan recurring template row")
			continue
		}
		templates = append(templates, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring templates: %w", err)
	}

	return templates, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(s scanner) (*domain.RecurringTemplate, error) {
	var t domain.RecurringTemplate
	var amount, direction, startDate, rule string
	var endDate, lastRunDate sql.NullString
	var paused int

	err := s.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Description, &amount,
		&direction, &startDate, &rule, &endDate, &paused, &lastRunDate)
	if err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	t.Amount = d
	t.Direction = domain.Direction(direction)
	t.Rule = domain.IntervalRule(rule)
	t.Paused = paused == 1

	if ts, err := time.Parse(dateLayout, startDate); err == nil {
		t.StartDate = ts
	}
	if endDate.Valid {
		if ts, err := time.Parse(dateLayout, endDate.String); err == nil {
			t.EndDate = &ts
		}
	}
	if lastRunDate.Valid {
		if ts, err := time.Parse(dateLayout, lastRunDate.String); err == nil {
			t.LastRunDate = &ts
		}
	}

	return &t, nil
}

func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(dateLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
