package scheduler

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/database"
)

// largeWALFrames is the WAL size (in frames) logged as a warning before checkpointing
const largeWALFrames = 1000

// WALCheckpointJob truncates the WAL of every database
type WALCheckpointJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases map[string]*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints each database. A failure on one database does not stop the others.
func (j *WALCheckpointJob) Run() error {
	names := make([]string, 0, len(j.databases))
	for name := range j.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	checkpointed := 0
	for _, name := range names {
		db := j.databases[name]
		if db == nil {
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, done int
		if err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &done); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("Failed to check WAL status")
			continue
		}
		if frames > largeWALFrames {
			j.log.Warn().
				Str("database", name).
				Int("wal_frames", frames).
				Int("checkpointed", done).
				Msg("WAL file is large")
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
			continue
		}
		checkpointed++
	}

	j.log.Debug().Int("checkpointed", checkpointed).Msg("WAL checkpoint completed")
	return nil
}
