package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/scheduler/base"
)

const backupTimeout = 15 * time.Minute

// BackupJob uploads a new archive and then rotates old ones.
type BackupJob struct {
	base.JobBase
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a backup job keeping archives for retentionDays.
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "backup").Logger(),
	}
}

// Name returns the job name for the scheduler.
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup job.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	info, err := j.service.CreateAndUpload(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("Backup failed")
		return fmt.Errorf("backup failed: %w", err)
	}

	deleted, err := j.service.RotateOldBackups(ctx, j.retentionDays)
	if err != nil {
		// The new archive is already stored; rotation is retried on the next run.
		j.log.Warn().Err(err).Msg("Backup rotation failed")
		return nil
	}

	j.log.Info().Str("key", info.Key).Int("rotated", deleted).Msg("Backup job completed")
	return nil
}
