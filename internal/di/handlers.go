package di

import (
	"github.com/rs/zerolog"

	allocationhandlers "github.com/aristath/cartera/internal/modules/allocation/handlers"
	currencyhandlers "github.com/aristath/cartera/internal/modules/currency/handlers"
	ledgerhandlers "github.com/aristath/cartera/internal/modules/ledger/handlers"
	portfoliohandlers "github.com/aristath/cartera/internal/modules/portfolio/handlers"
	snapshotshandlers "github.com/aristath/cartera/internal/modules/snapshots/handlers"
	"github.com/aristath/cartera/internal/server"
)

// Handlers returns the module HTTP handlers mounted under /api.
func Handlers(container *Container, log zerolog.Logger) []server.RouteRegistrar {
	return []server.RouteRegistrar{
		portfoliohandlers.NewHandler(container.PortfolioService, log),
		ledgerhandlers.NewHandler(container.TransactionRepo, log),
		snapshotshandlers.NewHandler(container.SnapshotService, log),
		allocationhandlers.NewHandler(container.AllocationService, log),
		currencyhandlers.NewHandler(container.FXClient, log),
	}
}
