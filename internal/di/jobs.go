package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/clientdata"
	"github.com/aristath/stockscorer/internal/config"
	"github.com/aristath/stockscorer/internal/reliability"
	"github.com/aristath/stockscorer/internal/scheduler"
)

// RegisterJobs creates the background jobs and schedules them.
// The scheduler is created here but not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	container.Scheduler = sched

	jobs := &JobInstances{
		CacheCleanup:  clientdata.NewCleanupJob(container.OracleCache, log),
		WALCheckpoint: scheduler.NewWALCheckpointJob(container.Databases(), log),
		Maintenance:   reliability.NewMaintenanceJob(container.Databases(), []string{"cache"}, cfg.DataDir, log),
	}
	if container.BackupService != nil {
		jobs.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Schedule.CacheCleanup, jobs.CacheCleanup},
		{cfg.Schedule.WALCheckpoint, jobs.WALCheckpoint},
		{cfg.Schedule.Maintenance, jobs.Maintenance},
		{cfg.Schedule.Backup, jobs.Backup},
	}

	for _, s := range schedules {
		if s.job == nil {
			continue
		}
		if err := sched.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", s.job.Name(), err)
		}
	}

	return jobs, nil
}
