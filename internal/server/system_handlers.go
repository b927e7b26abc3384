package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/scheduler"
)

// JobRunner is the part of the scheduler the system endpoints use.
type JobRunner interface {
	Statuses() []scheduler.JobStatus
	RunByName(name string) error
}

// SystemStatsFunc returns CPU and memory usage in percent.
type SystemStatsFunc func() (cpuPercent, memPercent float64)

// SystemStatusResponse is the body of GET /api/system/status.
type SystemStatusResponse struct {
	Status        string     `json:"status"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Goroutines    int        `json:"goroutines"`
	CPUPercent    float64    `json:"cpu_percent"`
	MemoryPercent float64    `json:"memory_percent"`
	Databases     []DBStatus `json:"databases"`
	Jobs          int        `json:"jobs"`
}

// DBStatus describes one database.
type DBStatus struct {
	Name      string  `json:"name"`
	OK        bool    `json:"ok"`
	Error     string  `json:"error,omitempty"`
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
}

// SystemHandlers serves the monitoring and job endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	databases   []*database.DB
	jobs        JobRunner
	stats       SystemStatsFunc
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(databases []*database.DB, jobs JobRunner, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		databases:   databases,
		jobs:        jobs,
	}
	h.stats = h.getSystemStats
	return h
}

// SetStatsFunc replaces the CPU and memory probe.
func (h *SystemHandlers) SetStatsFunc(fn SystemStatsFunc) {
	h.stats = fn
}

// RegisterRoutes mounts the system endpoints on r.
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)     // process, host and database health
		r.Get("/databases", h.HandleDatabaseStats) // per-database sizes
		r.Get("/jobs", h.HandleJobsStatus)         // scheduled jobs and their last run
		r.Post("/jobs/{name}/run", h.HandleRunJob) // run a scheduled job now
	})
}

// HandleSystemStatus returns process, host and database health. The status is
// "degraded" when any database fails its check.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.stats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Databases:     h.databaseStatuses(r.Context()),
	}
	for _, db := range resp.Databases {
		if !db.OK {
			resp.Status = "degraded"
		}
	}
	if h.jobs != nil {
		resp.Jobs = len(h.jobs.Statuses())
	}

	writeJSON(w, http.StatusOK, resp, h.log)
}

// HandleDatabaseStats returns size and page statistics for every database.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	type dbStats struct {
		Name  string          `json:"name"`
		Path  string          `json:"path"`
		Stats *database.Stats `json:"stats,omitempty"`
		Error string          `json:"error,omitempty"`
	}

	out := make([]dbStats, 0, len(h.databases))
	for _, db := range h.databases {
		entry := dbStats{Name: db.Name(), Path: db.Path()}
		stats, err := db.GetStats()
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Stats = stats
		}
		out = append(out, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"databases":    out,
		"last_checked": time.Now().Format(time.RFC3339),
	}, h.log)
}

// HandleJobsStatus lists the scheduled jobs.
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	statuses := []scheduler.JobStatus{}
	if h.jobs != nil {
		statuses = h.jobs.Statuses()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": statuses}, h.log)
}

// HandleRunJob runs a registered job synchronously.
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not running", h.log)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	err := h.jobs.RunByName(name)
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error(), h.log)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error(), h.log)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"job": name, "status": "completed"}, h.log)
	}
}

func (h *SystemHandlers) databaseStatuses(ctx context.Context) []DBStatus {
	out := make([]DBStatus, 0, len(h.databases))
	for _, db := range h.databases {
		st := DBStatus{Name: db.Name(), OK: true}
		if err := db.QuickCheck(ctx); err != nil {
			st.OK = false
			st.Error = err.Error()
		} else if stats, err := db.GetStats(); err == nil {
			st.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
			st.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
		}
		out = append(out, st)
	}
	return out
}

// getSystemStats samples CPU over 100ms so the endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}
