package clientdata

import (
	"fmt"

	"github.com/rs/zerolog"
)

// SweepResult counts the expired oracle answers removed in one sweep
type SweepResult struct {
	Metrics    int64 `json:"metrics"`
	Weights    int64 `json:"weights"`
	Narratives int64 `json:"narratives"`
}

// Total is the number of answers removed across all kinds
func (r SweepResult) Total() int64 {
	return r.Metrics + r.Weights + r.Narratives
}

// CleanupJob evicts oracle answers whose TTL has passed. Stale answers are
// still served as a fallback until this job removes them.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the oracle cache eviction job
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "oracle_cache_cleanup").Logger(),
	}
}

// Sweep deletes expired metrics, weight suggestions and narratives
func (j *CleanupJob) Sweep() (SweepResult, error) {
	var result SweepResult
	counters := map[string]*int64{
		TableMetrics:    &result.Metrics,
		TableWeights:    &result.Weights,
		TableNarratives: &result.Narratives,
	}

	for _, table := range AllTables {
		deleted, err := j.repo.DeleteExpired(table)
		if err != nil {
			return result, fmt.Errorf("failed to evict expired oracle answers: %w", err)
		}
		*counters[table] = deleted
	}

	return result, nil
}

// Run performs one sweep and logs what was evicted
func (j *CleanupJob) Run() error {
	result, err := j.Sweep()
	if err != nil {
		j.log.Error().Err(err).Msg("Oracle cache sweep failed")
		return err
	}

	if result.Total() == 0 {
		j.log.Debug().Msg("No expired oracle answers")
		return nil
	}

	j.log.Info().
		Int64("metrics", result.Metrics).
		Int64("weights", result.Weights).
		Int64("narratives", result.Narratives).
		Msg("Evicted expired oracle answers")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "oracle_cache_cleanup"
}
