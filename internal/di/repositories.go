package di

import (
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/clients/exchangerate"
	"github.com/aristath/cartera/internal/clients/yahoo"
	"github.com/aristath/cartera/internal/config"
	"github.com/aristath/cartera/internal/domain"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/allocation"
	"github.com/aristath/cartera/internal/modules/cash_flows"
	"github.com/aristath/cartera/internal/modules/ledger"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/modules/snapshots"
)

// InitializeRepositories creates the event bus, the outbound clients and the
// repositories over the open databases.
func InitializeRepositories(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn(), log)

	var limiter domain.RateLimiter
	if cfg.PriceRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.PriceRateLimit), 1)
	}
	container.PriceClient = yahoo.NewClient(cfg.PriceBaseURL, limiter, container.ClientDataRepo, log)
	container.FXClient = exchangerate.NewClient(cfg.FXBaseURL, container.ClientDataRepo, log)

	container.TransactionRepo = ledger.NewTransactionRepository(container.LedgerDB.Conn(), log)
	container.PositionRepo = portfolio.NewPositionRepository(container.PortfolioDB.Conn(), log)
	container.CashRepo = cash_flows.NewCashRepository(container.PortfolioDB.Conn(), log)
	container.SnapshotRepo = snapshots.NewRepository(container.HistoryDB.Conn(), log)
	container.ProfileRepo = allocation.NewProfileRepository(container.PortfolioDB.Conn(), log)
	container.GoalRepo = allocation.NewGoalRepository(container.PortfolioDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
}
