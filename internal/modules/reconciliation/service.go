package reconciliation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/modules/accounts"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
)

// Service drives the reconciliation state machine. All operations assume the
// caller holds whatever serialization the storage layer requires; the
// service itself never retries and reports every failure immediately.
type Service struct {
	sessions *Repository
	accounts *accounts.Repository
	txRepo   *transactions.Repository
	log      zerolog.Logger
}

// NewService creates a reconciliation service.
func NewService(sessions *Repository, accts *accounts.Repository, txRepo *transactions.Repository, log zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		accounts: accts,
		txRepo:   txRepo,
		log:      log.With().Str("service", "reconciliation").Logger(),
	}
}

// Create opens a reconciliation session for an account. If the account
// already has an in-progress session, that session is returned with
// created=false instead of creating a duplicate - the caller is redirected,
// not rejected.
//
// The starting balance is the reconciled balance of the account's full
// transaction history, snapshotted now and never recomputed for the life of
// the session.
func (s *Service) Create(accountID string, statementDate time.Time, statementEnding decimal.Decimal) (*domain.ReconciliationSession, bool, error) {
	account, err := s.accounts.GetByID(accountID)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}
	if !account.IsActive {
		return nil, false, &domain.PreconditionError{
			Op:     "create reconciliation",
			Reason: fmt.Sprintf("account %s is inactive", accountID),
		}
	}

	existing, err := s.sessions.GetInProgressByAccount(accountID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.log.Info().
			Str("session_id", existing.ID).
			Str("account_id", accountID).
			Msg("Redirecting to existing in-progress session")
		return existing, false, nil
	}

	history, err := s.txRepo.ListByAccount(accountID)
	if err != nil {
		return nil, false, err
	}

	session := domain.ReconciliationSession{
		ID:                     uuid.NewString(),
		AccountID:              accountID,
		StatementDate:          statementDate,
		StatementEndingBalance: statementEnding,
		StartingBalance:        accounts.ReconciledBalance(account.OpeningBalance, history),
		Status:                 domain.SessionInProgress,
		CreatedAt:              time.Now().UTC(),
	}

	if err := s.sessions.Create(session); err != nil {
		return nil, false, err
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("account_id", accountID).
		Str("starting_balance", session.StartingBalance.String()).
		Msg("Reconciliation session created")

	return &session, true, nil
}

// Get retrieves a session by ID.
func (s *Service) Get(sessionID string) (*domain.ReconciliationSession, error) {
	return s.sessions.GetByID(sessionID)
}

// Candidates returns the transactions a session may select from: the
// account's uncleared and cleared transactions. Reconciled transactions are
// never offered.
func (s *Service) Candidates(sessionID string) ([]domain.Transaction, error) {
	session, err := s.requireInProgress(sessionID, "list candidates")
	if err != nil {
		return nil, err
	}
	return s.txRepo.ListCandidates(session.AccountID)
}

// Summarize computes the running selection total for the given subset of
// candidate transaction IDs. Selection is a pure computation; nothing is
// persisted until Finish.
func (s *Service) Summarize(sessionID string, selectedIDs []string) (*SelectionSummary, error) {
	session, err := s.requireInProgress(sessionID, "summarize selection")
	if err != nil {
		return nil, err
	}

	candidates, err := s.txRepo.ListCandidates(session.AccountID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Transaction, len(candidates))
	for _, tx := range candidates {
		byID[tx.ID] = tx
	}

	selected := make([]domain.Transaction, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		tx, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("selected transaction %s is not a candidate of session %s: %w",
				id, sessionID, domain.ErrNotFound)
		}
		selected = append(selected, tx)
	}

	summary := Summarize(*session, selected)
	return &summary, nil
}

// QuickAddInput is the form shape for an ad-hoc transaction created inside a
// session.
type QuickAddInput struct {
	Amount      decimal.Decimal
	Direction   domain.Direction
	Description string
	CategoryID  string
	Date        time.Time
}

// QuickAdd creates an ad-hoc transaction against the session's account,
// pre-attached to the session so it immediately joins the candidate set.
// It bypasses the normal creation form but not its validation.
func (s *Service) QuickAdd(sessionID string, input QuickAddInput) (*domain.Transaction, error) {
	session, err := s.requireInProgress(sessionID, "quick-add transaction")
	if err != nil {
		return nil, err
	}

	if err := transactions.ValidateInput(input.Amount, input.Direction, input.Description, input.CategoryID); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = session.StatementDate
	}

	tx := domain.Transaction{
		ID:          uuid.NewString(),
		AccountID:   session.AccountID,
		Amount:      input.Amount,
		Direction:   input.Direction,
		Status:      domain.StatusUncleared,
		Date:        date,
		Description: input.Description,
		CategoryID:  &input.CategoryID,
		SessionID:   &session.ID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.txRepo.Create(tx); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("transaction_id", tx.ID).
		Msg("Quick-add transaction created")

	return &tx, nil
}

// Finish marks the listed transactions reconciled, permanently links them to
// the session, and moves the session to finished. The transaction set must
// be non-empty, every transaction must belong to the session's account, and
// the session must still be in progress - a finish against a terminal
// session indicates stale client state and is an error, not a no-op.
func (s *Service) Finish(sessionID, accountID string, txIDs []string) error {
	if len(txIDs) == 0 {
		ve := &domain.ValidationError{}
		ve.Add("transaction_ids", "must not be empty")
		return ve
	}

	session, err := s.requireInProgress(sessionID, "finish reconciliation")
	if err != nil {
		return err
	}
	if session.AccountID != accountID {
		return &domain.PreconditionError{
			Op:     "finish reconciliation",
			Reason: fmt.Sprintf("session %s does not belong to account %s", sessionID, accountID),
		}
	}

	if err := s.sessions.Finish(sessionID, accountID, txIDs); err != nil {
		return err
	}

	s.log.Info().
		Str("session_id", sessionID).
		Int("reconciled", len(txIDs)).
		Msg("Reconciliation session finished")

	return nil
}

// Cancel moves an in-progress session to cancelled. Transaction states are
// untouched.
func (s *Service) Cancel(sessionID, accountID string) error {
	session, err := s.requireInProgress(sessionID, "cancel reconciliation")
	if err != nil {
		return err
	}
	if session.AccountID != accountID {
		return &domain.PreconditionError{
			Op:     "cancel reconciliation",
			Reason: fmt.Sprintf("session %s does not belong to account %s", sessionID, accountID),
		}
	}

	if err := s.sessions.Cancel(sessionID); err != nil {
		return err
	}

	s.log.Info().Str("session_id", sessionID).Msg("Reconciliation session cancelled")
	return nil
}

// requireInProgress loads a session and rejects any operation against a
// session that has left the in_progress state. Terminal states are
// immutable.
func (s *Service) requireInProgress(sessionID, op string) (*domain.ReconciliationSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionInProgress {
		return nil, &domain.PreconditionError{
			Op:     op,
			Reason: fmt.Sprintf("session %s is %s, not in progress", sessionID, session.Status),
		}
	}
	return session, nil
}
