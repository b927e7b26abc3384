// Package base provides base implementation for scheduler jobs.
package base

import (
	"sync"
	"time"
)

// RunStatus is the outcome of the most recent run of a job.
type RunStatus struct {
	Runs     int           `json:"runs"`
	Failures int           `json:"failures"`
	LastRun  time.Time     `json:"last_run,omitempty"`
	Duration time.Duration `json:"duration"`
	LastErr  string        `json:"last_error,omitempty"`
}

// JobBase records run outcomes. Jobs embed it so the scheduler can report
// their status without each job tracking it.
type JobBase struct {
	mu     sync.Mutex
	status RunStatus
}

// RecordRun stores the outcome of a run that started at start.
func (j *JobBase) RecordRun(start time.Time, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.status.Runs++
	j.status.LastRun = start
	j.status.Duration = time.Since(start)
	j.status.LastErr = ""
	if err != nil {
		j.status.Failures++
		j.status.LastErr = err.Error()
	}
}

// Status returns a copy of the recorded outcome.
func (j *JobBase) Status() RunStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}
