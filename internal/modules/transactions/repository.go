// Package transactions provides ledger transaction storage and validation.
package transactions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles transaction rows in books.db.
type Repository struct {
	db  *sql.DB // books.db - transactions table
	log zerolog.Logger
}

// NewRepository creates a new transaction repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "transactions").Logger(),
	}
}

// Create inserts a new transaction.
func (r *Repository) Create(tx domain.Transaction) error {
	_, err := r.db.Exec(`
		INSERT INTO transactions
			(id, account_id, amount, direction, status, date, description,
			 category_id, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.AccountID, tx.Amount.String(), string(tx.Direction),
		string(tx.Status), tx.Date.UTC().Format(dateLayout), tx.Description,
		tx.CategoryID, tx.SessionID, tx.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID. Returns domain.ErrNotFound for a
// stale identifier.
func (r *Repository) GetByID(id string) (*domain.Transaction, error) {
	row := r.db.QueryRow(selectColumns+" FROM transactions WHERE id = ?", id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return tx, nil
}

// ListByAccount retrieves all transactions of an account in chronological
// order, oldest first. The order matters: running balance computation
// consumes this list as-is.
func (r *Repository) ListByAccount(accountID string) ([]domain.Transaction, error) {
	return r.list(selectColumns+`
		FROM transactions WHERE account_id = ?
		ORDER BY date, created_at, id
	`, accountID)
}

// ListCandidates retrieves the uncleared and cleared transactions of an
// account - the set a reconciliation session may select from. Transactions
// already reconciled in an earlier session are never offered again.
func (r *Repository) ListCandidates(accountID string) ([]domain.Transaction, error) {
	return r.list(selectColumns+`
		FROM transactions
		WHERE account_id = ? AND status IN ('uncleared', 'cleared')
		ORDER BY date, created_at, id
	`, accountID)
}

// ListBySession retrieves the transactions attached to a reconciliation
// session.
func (r *Repository) ListBySession(sessionID string) ([]domain.Transaction, error) {
	return r.list(selectColumns+`
		FROM transactions WHERE session_id = ?
		ORDER BY date, created_at, id
	`, sessionID)
}

// Update rewrites the mutable fields of a transaction. Reconciled
// transactions are immutable; updating one is a precondition violation.
func (r *Repository) Update(tx domain.Transaction) error {
	existing, err := r.GetByID(tx.ID)
	if err != nil {
		return err
	}
	if existing.Status == domain.StatusReconciled {
		return &domain.PreconditionError{
			Op:     "update transaction",
			Reason: fmt.Sprintf("transaction %s is reconciled and immutable", tx.ID),
		}
	}

	_, err = r.db.Exec(`
		UPDATE transactions
		SET amount = ?, direction = ?, status = ?, date = ?, description = ?, category_id = ?
		WHERE id = ? AND status != 'reconciled'
	`, tx.Amount.String(), string(tx.Direction), string(tx.Status),
		tx.Date.UTC().Format(dateLayout), tx.Description, tx.CategoryID, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", tx.ID, err)
	}
	return nil
}

const selectColumns = `
	SELECT id, account_id, amount, direction, status, date, description,
	       category_id, session_id, created_at`

func (r *Repository) list(query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan transaction row")
			continue
		}
		txns = append(txns, *tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amount, direction, status, date, createdAt string
	var categoryID, sessionID sql.NullString

	err := s.Scan(&tx.ID, &tx.AccountID, &amount, &direction, &status, &date,
		&tx.Description, &categoryID, &sessionID, &createdAt)
	if err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	tx.Amount = d
	tx.Direction = domain.Direction(direction)
	tx.Status = domain.TransactionStatus(status)

	if ts, err := time.Parse(dateLayout, date); err == nil {
		tx.Date = ts
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		tx.CreatedAt = ts
	}
	if categoryID.Valid {
		tx.CategoryID = &categoryID.String
	}
	if sessionID.Valid {
		tx.SessionID = &sessionID.String
	}

	return &tx, nil
}
