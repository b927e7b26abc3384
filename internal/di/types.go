// Package di wires databases, clients, services, jobs and handlers together.
package di

import (
	"github.com/aristath/cartera/internal/clientdata"
	"github.com/aristath/cartera/internal/clients/exchangerate"
	"github.com/aristath/cartera/internal/clients/yahoo"
	"github.com/aristath/cartera/internal/database"
	"github.com/aristath/cartera/internal/events"
	"github.com/aristath/cartera/internal/modules/allocation"
	"github.com/aristath/cartera/internal/modules/cash_flows"
	"github.com/aristath/cartera/internal/modules/ledger"
	"github.com/aristath/cartera/internal/modules/portfolio"
	"github.com/aristath/cartera/internal/modules/snapshots"
	"github.com/aristath/cartera/internal/reliability"
	"github.com/aristath/cartera/internal/scheduler"
)

// Container holds every long-lived dependency of the application. It is built
// by Wire and closed with Close.
type Container struct {
	// Databases
	LedgerDB     *database.DB
	PortfolioDB  *database.DB
	HistoryDB    *database.DB
	ClientDataDB *database.DB

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Clients
	ClientDataRepo *clientdata.Repository
	PriceClient    *yahoo.Client
	FXClient       *exchangerate.Client

	// Repositories
	TransactionRepo *ledger.TransactionRepository
	PositionRepo    *portfolio.PositionRepository
	CashRepo        *cash_flows.CashRepository
	SnapshotRepo    *snapshots.Repository
	ProfileRepo     *allocation.ProfileRepository
	GoalRepo        *allocation.GoalRepository

	// Services
	Aggregator        *portfolio.Aggregator
	PortfolioService  *portfolio.Service
	Normalizer        *snapshots.Normalizer
	SnapshotService   *snapshots.Service
	AllocationService *allocation.Service
	BackupService     *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases in a fixed order.
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.LedgerDB, c.PortfolioDB, c.HistoryDB, c.ClientDataDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every open database.
func (c *Container) Close() {
	for _, db := range c.Databases() {
		db.Close()
	}
}
