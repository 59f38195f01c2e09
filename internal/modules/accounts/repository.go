package accounts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
)

// Repository handles account rows in books.db.
type Repository struct {
	db  *sql.DB // books.db - accounts table
	log zerolog.Logger
}

// NewRepository creates a new account repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "accounts").Logger(),
	}
}

// Create inserts a new account.
func (r *Repository) Create(a domain.Account) error {
	_, err := r.db.Exec(`
		INSERT INTO accounts (id, org_id, name, opening_balance, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.OrgID, a.Name, a.OpeningBalance.String(), boolToInt(a.IsActive),
		a.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID. Returns nil if not found.
func (r *Repository) GetByID(id string) (*domain.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, org_id, name, opening_balance, is_active, created_at
		FROM accounts WHERE id = ?
	`, id)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return a, nil
}

// ListByOrg retrieves all accounts belonging to an organization.
func (r *Repository) ListByOrg(orgID string) ([]domain.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, org_id, name, opening_balance, is_active, created_at
		FROM accounts WHERE org_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan account row")
			continue
		}
		accts = append(accts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accts, nil
}

// SetActive updates the active flag of an account.
func (r *Repository) SetActive(id string, active bool) error {
	res, err := r.db.Exec("UPDATE accounts SET is_active = ? WHERE id = ?", boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	var openingBalance, createdAt string
	var isActive int

	if err := s.Scan(&a.ID, &a.OrgID, &a.Name, &openingBalance, &isActive, &createdAt); err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(openingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid opening balance %q: %w", openingBalance, err)
	}
	a.OpeningBalance = balance
	a.IsActive = isActive == 1

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = ts
	}

	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
