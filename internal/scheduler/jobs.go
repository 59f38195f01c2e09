package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fundkeep/fundkeep/internal/database"
	"github.com/fundkeep/fundkeep/internal/modules/recurring"
)

// MaterializeJob runs the recurring transaction materializer and records
// the outcome in the job history.
type MaterializeJob struct {
	materializer *recurring.Materializer
	history      *History
	log          zerolog.Logger
}

// NewMaterializeJob creates the materializer job.
func NewMaterializeJob(m *recurring.Materializer, history *History, log zerolog.Logger) *MaterializeJob {
	return &MaterializeJob{
		materializer: m,
		history:      history,
		log:          log.With().Str("job", "materialize_recurring").Logger(),
	}
}

// Name implements Job.
func (j *MaterializeJob) Name() string { return "materialize_recurring" }

// Run implements Job.
func (j *MaterializeJob) Run() error {
	started := time.Now()
	result, err := j.materializer.Run()
	finished := time.Now()

	if recordErr := j.history.Record(j.Name(), started, finished, err, result); recordErr != nil {
		j.log.Warn().Err(recordErr).Msg("Failed to record job history")
	}

	return err
}

// WALCheckpointJob truncates the WAL files of the databases to keep them
// from growing unbounded between restarts.
type WALCheckpointJob struct {
	dbs     []*database.DB
	history *History
	log     zerolog.Logger
}

// NewWALCheckpointJob creates the WAL maintenance job.
func NewWALCheckpointJob(dbs []*database.DB, history *History, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		dbs:     dbs,
		history: history,
		log:     log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name implements Job.
func (j *WALCheckpointJob) Name() string { return "wal_checkpoint" }

// Run implements Job.
func (j *WALCheckpointJob) Run() error {
	started := time.Now()

	var runErr error
	for _, db := range j.dbs {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			runErr = err
		}
	}

	if recordErr := j.history.Record(j.Name(), started, time.Now(), runErr, nil); recordErr != nil {
		j.log.Warn().Err(recordErr).Msg("Failed to record job history")
	}

	return runErr
}
