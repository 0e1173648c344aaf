package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// backupTimeout bounds one scheduled backup including rotation
const backupTimeout = 10 * time.Minute

// BackupJob uploads a snapshot of every project, then rotates old snapshots
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "project_backup").Logger(),
	}
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return err
	}

	// A failed rotation leaves extra snapshots behind; the new one is already safe
	if _, err := j.service.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "project_backup"
}
