package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/config"
	"github.com/aristath/cartera/internal/modules/snapshots"
	"github.com/aristath/cartera/internal/reliability"
	"github.com/aristath/cartera/internal/scheduler"
)

type scheduledJob struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the scheduler and adds every periodic job to it. The
// scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	strategy, err := snapshots.ParseStrategy(cfg.NormalizeStrategy)
	if err != nil {
		return fmt.Errorf("invalid normalization strategy: %w", err)
	}

	// Configured users win; otherwise every user with a book.
	var users scheduler.UserSource = container.PortfolioService
	if len(cfg.Users) > 0 {
		users = scheduler.NewStaticUsers(cfg.Users)
	}

	sched := scheduler.New(log)

	dailySnapshot := scheduler.NewDailySnapshotJob(container.SnapshotService, users)
	dailySnapshot.SetLogger(log)

	normalizeHistory := scheduler.NewNormalizeHistoryJob(container.SnapshotService, users, strategy)
	normalizeHistory.SetLogger(log)

	processMaturities := scheduler.NewProcessMaturitiesJob(container.PortfolioService)
	processMaturities.SetLogger(log)

	jobs := []scheduledJob{
		{cfg.SnapshotSchedule, dailySnapshot},
		{cfg.NormalizeSchedule, normalizeHistory},
		{cfg.MaturitySchedule, processMaturities},
		{cfg.CleanupSchedule, clientdata.NewCleanupJob(container.ClientDataRepo, log)},
		{cfg.MaintenanceSchedule, reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log)},
	}
	if container.BackupService != nil {
		jobs = append(jobs, scheduledJob{
			cfg.Backup.Schedule,
			reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log),
		})
	}

	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			return fmt.Errorf("failed to register %s job: %w", j.job.Name(), err)
		}
	}

	container.Scheduler = sched
	log.Info().Int("jobs", len(jobs)).Msg("Jobs registered")
	return nil
}
