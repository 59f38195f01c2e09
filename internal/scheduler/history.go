package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// JobRun is one recorded job execution. The payload is a msgpack-encoded
// job-specific summary (for the materializer: the occurrence dates created).
type JobRun struct {
	ID         int64     `json:"id"`
	JobName    string    `json:"job_name"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Payload    []byte    `json:"-"`
}

// DecodePayload unmarshals the run's payload into v.
func (r JobRun) DecodePayload(v interface{}) error {
	if len(r.Payload) == 0 {
		return nil
	}
	return msgpack.Unmarshal(r.Payload, v)
}

// History records job executions in registry.db so operators can see what
// the scheduler has been doing and what each run produced.
type History struct {
	db  *sql.DB // registry.db - job_history table
	log zerolog.Logger
}

// NewHistory creates a job history recorder.
func NewHistory(db *sql.DB, log zerolog.Logger) *History {
	return &History{
		db:  db,
		log: log.With().Str("component", "job_history").Logger(),
	}
}

// Record stores one job execution. A nil payload stores an empty blob.
func (h *History) Record(jobName string, started, finished time.Time, runErr error, payload interface{}) error {
	var blob []byte
	if payload != nil {
		var err error
		blob, err = msgpack.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode job payload: %w", err)
		}
	}

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	_, err := h.db.Exec(`
		INSERT INTO job_history (job_name, started_at, finished_at, success, error, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, jobName, started.UTC().Format(time.RFC3339), finished.UTC().Format(time.RFC3339),
		boolToInt(runErr == nil), errMsg, blob)
	if err != nil {
		return fmt.Errorf("failed to record job run: %w", err)
	}
	return nil
}

// Recent retrieves the latest runs of a job, newest first.
func (h *History) Recent(jobName string, limit int) ([]JobRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(`
		SELECT id, job_name, started_at, finished_at, success, error, payload
		FROM job_history WHERE job_name = ?
		ORDER BY id DESC LIMIT ?
	`, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job history: %w", err)
	}
	defer rows.Close()

	var runs []JobRun
	for rows.Next() {
		var run JobRun
		var started, finished string
		var success int
		var errMsg sql.NullString

		if err := rows.Scan(&run.ID, &run.JobName, &started, &finished, &success, &errMsg, &run.Payload); err != nil {
			h.log.Warn().Err(err).Msg("Failed to scan job history row")
			continue
		}

		if ts, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, finished); err == nil {
			run.FinishedAt = ts
		}
		run.Success = success == 1
		if errMsg.Valid {
			run.Error = errMsg.String
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job history: %w", err)
	}

	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
