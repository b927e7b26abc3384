package di

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/cartera/internal/config"
	"github.com/aristath/cartera/internal/database"
)

// InitializeDatabases opens the four databases and applies their schemas.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	specs := []struct {
		name    string
		profile database.DatabaseProfile
		target  **database.DB
	}{
		// Append-only transaction log
		{database.NameLedger, database.ProfileLedger, &container.LedgerDB},
		// Positions, cash, profiles and goals
		{database.NamePortfolio, database.ProfileStandard, &container.PortfolioDB},
		// Daily records
		{database.NameHistory, database.ProfileStandard, &container.HistoryDB},
		// Rebuildable cache of price and FX responses
		{database.NameClientData, database.ProfileCache, &container.ClientDataDB},
	}

	for _, spec := range specs {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, spec.name+".db"),
			Profile: spec.profile,
			Name:    spec.name,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize %s database: %w", spec.name, err)
		}
		*spec.target = db
	}

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized")
	return container, nil
}
