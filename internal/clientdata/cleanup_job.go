package clientdata

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/scheduler/base"
)

// CleanupJob purges cache rows that expired longer than the grace period ago.
type CleanupJob struct {
	base.JobBase
	repo  *Repository
	grace time.Duration
	last  map[string]int64
	log   zerolog.Logger
}

// NewCleanupJob creates a cleanup job that keeps expired rows for StaleGrace.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:  repo,
		grace: StaleGrace,
		log:   log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// SetGrace changes how long expired rows are kept.
func (j *CleanupJob) SetGrace(grace time.Duration) {
	j.grace = grace
}

// Run deletes the purgeable rows of every cache table.
func (j *CleanupJob) Run() error {
	deleted, err := j.repo.DeleteAllExpired(j.grace)
	if err != nil {
		return fmt.Errorf("failed to purge client data: %w", err)
	}
	j.last = deleted

	var total int64
	event := j.log.Info()
	for table, n := range deleted {
		event = event.Int64(table, n)
		total += n
	}
	event.Int64("total", total).Dur("grace", j.grace).Msg("Client data cleanup completed")
	return nil
}

// LastDeleted returns the per-table counts of the most recent run.
func (j *CleanupJob) LastDeleted() map[string]int64 {
	return j.last
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
