package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/config"
	"github.com/aristath/cartera/internal/modules/allocation"
	"github.com/aristath/cartera/internal/modules/duplicates"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/modules/snapshots"
	"github.com/aristath/cartera/internal/reliability"
)

// InitializeServices builds the domain services on top of the repositories.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Aggregator = portfolio.NewAggregator(container.PriceClient, cfg.PriceLookbackDays, log)

	container.PortfolioService = portfolio.NewService(
		container.PortfolioDB.Conn(),
		container.PositionRepo,
		container.CashRepo,
		container.TransactionRepo,
		container.FXClient,
		container.Aggregator,
		container.EventManager,
		portfolio.FeeDefaults{
			CommissionPct:  cfg.CommissionPct,
			PurchaseFeePct: cfg.PurchaseFeePct,
		},
		log,
	)
	policy, err := duplicates.ParsePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return fmt.Errorf("failed to configure portfolio service: %w", err)
	}
	container.PortfolioService.SetDuplicatePolicy(policy)

	container.Normalizer = snapshots.NewNormalizer(container.SnapshotRepo, container.EventManager, log)
	container.SnapshotService = snapshots.NewService(
		container.SnapshotRepo,
		container.PortfolioService,
		container.TransactionRepo,
		container.Normalizer,
		container.EventManager,
		log,
	)

	container.AllocationService = allocation.NewService(
		container.ProfileRepo,
		container.GoalRepo,
		container.PortfolioService,
		container.FXClient,
		symbolSets(cfg),
		container.EventManager,
		log,
	)

	if cfg.Backup.Enabled {
		store, err := reliability.NewS3Client(ctx, reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup store: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			store,
			container.Databases(),
			cfg.DataDir,
			container.EventManager,
			log,
		)
	}

	log.Debug().Msg("Services initialized")
	return nil
}

// symbolSets applies configured overrides to the built-in symbol lists.
func symbolSets(cfg *config.Config) allocation.SymbolSets {
	sets := allocation.DefaultSymbolSets()
	if len(cfg.TechSymbols) > 0 {
		sets.Tech = cfg.TechSymbols
	}
	if len(cfg.VolatileSymbols) > 0 {
		sets.Volatile = cfg.VolatileSymbols
	}
	return sets
}
