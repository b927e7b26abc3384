package scheduler

import (
	"errors"

	"github.com/aristath/cartera/internal/scheduler/base"
)

// JobBase re-exports base.JobBase so jobs in this package can embed it directly.
type JobBase = base.JobBase

// ErrJobNotFound is returned by RunByName for an unregistered job.
var ErrJobNotFound = errors.New("job not found")
