package recurring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/domain"
	"github.com/fundkeep/fundkeep/internal/money"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
)

// Materializer turns due template occurrences into uncleared ledger
// transactions. It is invoked by the scheduler (daily by default) and by the
// manual trigger endpoint.
type Materializer struct {
	templates *Repository
	txRepo    *transactions.Repository
	log       zerolog.Logger
	now       func() time.Time
}

// NewMaterializer creates a materializer.
func NewMaterializer(templates *Repository, txRepo *transactions.Repository, log zerolog.Logger) *Materializer {
	return &Materializer{
		templates: templates,
		txRepo:    txRepo,
		log:       log.With().Str("component", "materializer").Logger(),
		now:       time.Now,
	}
}

// TemplateResult summarizes one template's materialization in a run.
type TemplateResult struct {
	TemplateID string   `msgpack:"template_id" json:"template_id"`
	Dates      []string `msgpack:"dates" json:"dates"`
}

// Result summarizes one materializer run. Stored (msgpack-encoded) in the
// job history.
type Result struct {
	Templates []TemplateResult `msgpack:"templates" json:"templates"`
	Created   int              `msgpack:"created" json:"created"`
}

// Run materializes every due occurrence up to today for all active,
// unpaused templates. An occurrence is due when it is on or before today;
// a template that was not checked for several intervals has each elapsed
// occurrence materialized in order, so the ledger never silently drops a
// recurring entry.
func (m *Materializer) Run() (*Result, error) {
	return m.RunAt(m.now())
}

// RunAt is Run with an explicit notion of "today", used by tests and by
// catch-up invocations.
func (m *Materializer) RunAt(now time.Time) (*Result, error) {
	today := money.DateOnly(now)

	templates, err := m.templates.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list active templates: %w", err)
	}

	result := &Result{}
	for _, t := range templates {
		dates, err := m.materializeTemplate(t, today)
		if err != nil {
			// One broken template must not starve the rest.
			m.log.Error().Err(err).Str("template_id", t.ID).Msg("Failed to materialize template")
			continue
		}
		if len(dates) == 0 {
			continue
		}

		tr := TemplateResult{TemplateID: t.ID}
		for _, d := range dates {
			tr.Dates = append(tr.Dates, d.Format(dateLayout))
		}
		result.Templates = append(result.Templates, tr)
		result.Created += len(dates)
	}

	m.log.Info().Int("created", result.Created).Msg("Materializer run complete")
	return result, nil
}

// materializeTemplate inserts a transaction for every due occurrence of one
// template and advances its last-run date.
func (m *Materializer) materializeTemplate(t domain.RecurringTemplate, today time.Time) ([]time.Time, error) {
	var next *time.Time
	if t.LastRunDate == nil {
		next = InitialOccurrence(t.StartDate, t.EndDate)
	} else {
		next = NextOccurrence(t.StartDate, t.Rule, *t.LastRunDate, t.EndDate)
	}

	var created []time.Time
	for next != nil && !next.After(today) {
		occurrence := *next

		tx := domain.Transaction{
			ID:          uuid.NewString(),
			AccountID:   t.AccountID,
			Amount:      t.Amount,
			Direction:   t.Direction,
			Status:      domain.StatusUncleared,
			Date:        occurrence,
			Description: t.Description,
			CategoryID:  &t.CategoryID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := m.txRepo.Create(tx); err != nil {
			return created, fmt.Errorf("failed to create transaction for occurrence %s: %w",
				occurrence.Format(dateLayout), err)
		}

		if err := m.templates.SetLastRunDate(t.ID, &occurrence); err != nil {
			return created, err
		}

		created = append(created, occurrence)
		next = NextOccurrence(t.StartDate, t.Rule, occurrence, t.EndDate)
	}

	return created, nil
}

// Resume un-pauses a template. Occurrences missed while paused are skipped:
// the last-run date is positioned so the next materialized transaction lands
// on the first valid occurrence at or after today, never in the past.
func (m *Materializer) Resume(templateID string) error {
	return m.ResumeAt(templateID, m.now())
}

// ResumeAt is Resume with an explicit notion of "today".
func (m *Materializer) ResumeAt(templateID string, now time.Time) error {
	today := money.DateOnly(now)

	t, err := m.templates.GetByID(templateID)
	if err != nil {
		return err
	}
	if !t.Paused {
		return &domain.PreconditionError{Op: "resume template", Reason: "template is not paused"}
	}

	occ := ResumeOccurrence(t.StartDate, t.Rule, today, t.EndDate)

	var lastRun *time.Time
	switch {
	case occ == nil:
		// The template's end date has passed; it will never fire again.
		// Freeze the last-run date at the end date so the materializer
		// produces nothing further.
		lastRun = t.EndDate
	case occ.Equal(money.DateOnly(t.StartDate)):
		// Start date still in the future: behave like a fresh template.
		lastRun = nil
	default:
		// Position the cursor on the occurrence immediately before the
		// resume occurrence so the next materialization lands exactly on it.
		prev := money.DateOnly(t.StartDate)
		for {
			n := money.AddInterval(prev, t.Rule)
			if !n.Before(*occ) {
				break
			}
			prev = n
		}
		lastRun = &prev
	}

	if err := m.templates.SetLastRunDate(templateID, lastRun); err != nil {
		return err
	}
	return m.templates.SetPaused(templateID, false)
}
