package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const snapshotTimeout = 5 * time.Minute

// SnapshotTaker records a daily snapshot for a set of users.
type SnapshotTaker interface {
	TakeAll(ctx context.Context, users []string, asOf time.Time) (int, error)
}

// DailySnapshotJob records today's snapshot for every user.
type DailySnapshotJob struct {
	JobBase
	log       zerolog.Logger
	snapshots SnapshotTaker
	users     UserSource
	now       func() time.Time
}

// NewDailySnapshotJob creates a new DailySnapshotJob
func NewDailySnapshotJob(snapshots SnapshotTaker, users UserSource) *DailySnapshotJob {
	return &DailySnapshotJob{
		log:       zerolog.Nop(),
		snapshots: snapshots,
		users:     users,
		now:       time.Now,
	}
}

// SetLogger sets the logger for the job
func (j *DailySnapshotJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// SetClock replaces the time source.
func (j *DailySnapshotJob) SetClock(now func() time.Time) {
	j.now = now
}

// Name returns the job name
func (j *DailySnapshotJob) Name() string {
	return "daily_snapshot"
}

// Run executes the daily snapshot job
func (j *DailySnapshotJob) Run() error {
	users, err := j.users.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		j.log.Debug().Msg("No users to snapshot")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	written, err := j.snapshots.TakeAll(ctx, users, j.now())
	if err != nil {
		return fmt.Errorf("snapshot run interrupted after %d users: %w", written, err)
	}

	j.log.Info().
		Int("users", len(users)).
		Int("written", written).
		Msg("Daily snapshots recorded")
	return nil
}
