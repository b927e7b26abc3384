package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MaturityProcessor credits matured fixed-term deposits and cauciones.
type MaturityProcessor interface {
	ProcessAllMaturities(asOf time.Time) (int, error)
}

// ProcessMaturitiesJob credits every lending position that reached its
// maturity date.
type ProcessMaturitiesJob struct {
	JobBase
	log       zerolog.Logger
	processor MaturityProcessor
	now       func() time.Time
}

// NewProcessMaturitiesJob creates a new ProcessMaturitiesJob
func NewProcessMaturitiesJob(processor MaturityProcessor) *ProcessMaturitiesJob {
	return &ProcessMaturitiesJob{
		log:       zerolog.Nop(),
		processor: processor,
		now:       time.Now,
	}
}

// SetLogger sets the logger for the job
func (j *ProcessMaturitiesJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// SetClock replaces the time source.
func (j *ProcessMaturitiesJob) SetClock(now func() time.Time) {
	j.now = now
}

// Name returns the job name
func (j *ProcessMaturitiesJob) Name() string {
	return "process_maturities"
}

// Run executes the maturity job
func (j *ProcessMaturitiesJob) Run() error {
	credited, err := j.processor.ProcessAllMaturities(j.now())
	if err != nil {
		return fmt.Errorf("failed to process maturities: %w", err)
	}
	if credited > 0 {
		j.log.Info().Int("credited", credited).Msg("Matured positions credited")
	}
	return nil
}
