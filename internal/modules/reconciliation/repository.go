package reconciliation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/database"
	"github.com/fundkeep/fundkeep/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository handles reconciliation session rows in books.db.
type Repository struct {
	db  *sql.DB // books.db - reconciliation_sessions + transactions tables
	log zerolog.Logger
}

// NewRepository creates a new reconciliation session repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "reconciliation").Logger(),
	}
}

// Create inserts a new session. The partial unique index on
// (account_id) WHERE status = 'in_progress' makes a concurrent duplicate
// creation fail here rather than silently producing two open sessions.
func (r *Repository) Create(s domain.ReconciliationSession) error {
	_, err := r.db.Exec(`
		INSERT INTO reconciliation_sessions
			(id, account_id, statement_date, statement_ending_balance,
			 starting_balance, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.AccountID, s.StatementDate.UTC().Format(dateLayout),
		s.StatementEndingBalance.String(), s.StartingBalance.String(),
		string(s.Status), s.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert reconciliation session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by ID. Returns domain.ErrNotFound for a stale
// identifier.
func (r *Repository) GetByID(id string) (*domain.ReconciliationSession, error) {
	row := r.db.QueryRow(selectColumns+" FROM reconciliation_sessions WHERE id = ?", id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reconciliation session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reconciliation session %s: %w", id, err)
	}
	return s, nil
}

// GetInProgressByAccount retrieves the account's open session, or nil when
// none exists.
func (r *Repository) GetInProgressByAccount(accountID string) (*domain.ReconciliationSession, error) {
	row := r.db.QueryRow(selectColumns+`
		FROM reconciliation_sessions
		WHERE account_id = ? AND status = 'in_progress'
	`, accountID)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get in-progress session for account %s: %w", accountID, err)
	}
	return s, nil
}

// ListByAccount retrieves all sessions of an account, newest first.
func (r *Repository) ListByAccount(accountID string) ([]domain.ReconciliationSession, error) {
	rows, err := r.db.Query(selectColumns+`
		FROM reconciliation_sessions WHERE account_id = ?
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ReconciliationSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan reconciliation session row")
			continue
		}
		sessions = append(sessions, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reconciliation sessions: %w", err)
	}

	return sessions, nil
}

// Finish atomically marks every listed transaction reconciled, links it to
// the session, and flips the session to finished. A partial application
// would leave transactions reconciled against a non-finished session, so
// the whole operation runs in one SQL transaction and any guard failure
// rolls everything back.
func (r *Repository) Finish(sessionID, accountID string, txIDs []string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, id := range txIDs {
			res, err := tx.Exec(`
				UPDATE transactions
				SET status = 'reconciled', session_id = ?
				WHERE id = ? AND account_id = ? AND status != 'reconciled'
			`, sessionID, id, accountID)
			if err != nil {
				return fmt.Errorf("failed to reconcile transaction %s: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check reconcile result for %s: %w", id, err)
			}
			if n == 0 {
				return &domain.PreconditionError{
					Op:     "finish reconciliation",
					Reason: fmt.Sprintf("transaction %s does not belong to the account or is already reconciled", id),
				}
			}
		}

		res, err := tx.Exec(`
			UPDATE reconciliation_sessions
			SET status = 'finished'
			WHERE id = ? AND status = 'in_progress'
		`, sessionID)
		if err != nil {
			return fmt.Errorf("failed to finish session %s: %w", sessionID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check finish result for %s: %w", sessionID, err)
		}
		if n == 0 {
			return &domain.PreconditionError{
				Op:     "finish reconciliation",
				Reason: fmt.Sprintf("session %s is not in progress", sessionID),
			}
		}

		return nil
	})
}

// Cancel flips an in-progress session to cancelled. No transaction states
// change.
func (r *Repository) Cancel(sessionID string) error {
	res, err := r.db.Exec(`
		UPDATE reconciliation_sessions
		SET status = 'cancelled'
		WHERE id = ? AND status = 'in_progress'
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to cancel session %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check cancel result for %s: %w", sessionID, err)
	}
	if n == 0 {
		return &domain.PreconditionError{
			Op:     "cancel reconciliation",
			Reason: fmt.Sprintf("session %s is not in progress", sessionID),
		}
	}
	return nil
}

const selectColumns = `
	SELECT id, account_id, statement_date, statement_ending_balance,
	       starting_balance, status, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(s scanner) (*domain.ReconciliationSession, error) {
	var sess domain.ReconciliationSession
	var statementDate, endingBalance, startingBalance, status, createdAt string

	err := s.Scan(&sess.ID, &sess.AccountID, &statementDate, &endingBalance,
		&startingBalance, &status, &createdAt)
	if err != nil {
		return nil, err
	}

	ending, err := decimal.NewFromString(endingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid statement ending balance %q: %w", endingBalance, err)
	}
	starting, err := decimal.NewFromString(startingBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid starting balance %q: %w", startingBalance, err)
	}
	sess.StatementEndingBalance = ending
	sess.StartingBalance = starting
	sess.Status = domain.SessionStatus(status)

	if ts, err := time.Parse(dateLayout, statementDate); err == nil {
		sess.StatementDate = ts
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		sess.CreatedAt = ts
	}

	return &sess, nil
}
