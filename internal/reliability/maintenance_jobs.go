package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/scheduler/base"
)

const (
	criticalFreeBytes = 500 * 1024 * 1024
	lowFreeBytes      = 5 * 1024 * 1024 * 1024
)

// DiskUsageFunc reports free bytes on the filesystem holding path.
type DiskUsageFunc func(path string) (uint64, error)

func freeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// MaintenanceJob checks every database, truncates the WAL files and watches
// free disk space under the data directory.
type MaintenanceJob struct {
	base.JobBase
	databases []*database.DB
	dataDir   string
	diskUsage DiskUsageFunc
	log       zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for databases stored in dataDir.
func NewMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		diskUsage: freeBytes,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// SetDiskUsage replaces the free-space probe.
func (j *MaintenanceJob) SetDiskUsage(fn DiskUsageFunc) {
	j.diskUsage = fn
}

// Name returns the job name for the scheduler.
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job. A database that fails its check or a
// critically full disk fails the run; WAL checkpoint failures only warn.
func (j *MaintenanceJob) Run() error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database check failed")
			return fmt.Errorf("database %s failed check: %w", db.Name(), err)
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.logDatabaseStats()

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Int("databases", len(j.databases)).
		Msg("Maintenance completed")
	return nil
}

func (j *MaintenanceJob) checkDiskSpace() error {
	free, err := j.diskUsage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.dataDir).Msg("Failed to read disk usage")
		return nil
	}

	freeMB := float64(free) / 1024 / 1024
	switch {
	case free < criticalFreeBytes:
		j.log.Error().Float64("free_mb", freeMB).Msg("Insufficient disk space")
		return fmt.Errorf("only %.0f MB free under %s", freeMB, j.dataDir)
	case free < lowFreeBytes:
		j.log.Warn().Float64("free_mb", freeMB).Msg("Disk space running low")
	default:
		j.log.Debug().Float64("free_mb", freeMB).Msg("Disk space check")
	}
	return nil
}

func (j *MaintenanceJob) logDatabaseStats() {
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			continue
		}
		j.log.Info().
			Str("database", db.Name()).
			Float64("size_mb", float64(stats.SizeBytes)/1024/1024).
			Float64("wal_size_mb", float64(stats.WALSizeBytes)/1024/1024).
			Int64("freelist_pages", stats.FreelistCount).
			Msg("Database stats")
	}
}
