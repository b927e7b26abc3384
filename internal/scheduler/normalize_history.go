package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/modules/snapshots"
)

const normalizeTimeout = 5 * time.Minute

// HistoryNormalizer reconciles the stored history of one user.
type HistoryNormalizer interface {
	Normalize(ctx context.Context, userID string, strategy snapshots.Strategy) (*snapshots.NormalizeResult, error)
}

// NormalizeHistoryJob runs one normalization strategy over every user.
type NormalizeHistoryJob struct {
	JobBase
	log        zerolog.Logger
	normalizer HistoryNormalizer
	users      UserSource
	strategy   snapshots.Strategy
}

// NewNormalizeHistoryJob creates a new NormalizeHistoryJob
func NewNormalizeHistoryJob(normalizer HistoryNormalizer, users UserSource, strategy snapshots.Strategy) *NormalizeHistoryJob {
	return &NormalizeHistoryJob{
		log:        zerolog.Nop(),
		normalizer: normalizer,
		users:      users,
		strategy:   strategy,
	}
}

// SetLogger sets the logger for the job
func (j *NormalizeHistoryJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// Name returns the job name
func (j *NormalizeHistoryJob) Name() string {
	return "normalize_history"
}

// Run executes the normalization job. Every user is attempted; the first
// failure is returned after the rest have run.
func (j *NormalizeHistoryJob) Run() error {
	users, err := j.users.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), normalizeTimeout)
	defer cancel()

	var firstErr error
	corrected, persisted := 0, 0
	for _, userID := range users {
		res, err := j.normalizer.Normalize(ctx, userID, j.strategy)
		if err != nil {
			j.log.Error().Err(err).Str("user", userID).Msg("Normalization failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to normalize %s: %w", userID, err)
			}
			continue
		}
		corrected += res.Corrected
		if res.Persisted {
			persisted++
		}
	}

	j.log.Info().
		Str("strategy", j.strategy.Name()).
		Int("users", len(users)).
		Int("corrected", corrected).
		Int("persisted", persisted).
		Msg("History normalization completed")
	return firstErr
}
