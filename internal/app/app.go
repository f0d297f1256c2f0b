// Package app wires the stores, services, scheduler and router together.
package app

import (
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/catalog"
	"auction-engine/internal/config"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/locker"
	"auction-engine/internal/notify"
	"auction-engine/internal/payout"
	"auction-engine/internal/repository"
	"auction-engine/internal/scheduler"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// Options configures New. Zero values fall back to in-memory stores, an
// empty catalog, the logging disburser and notifier, and the system clock.
type Options struct {
	Config    config.Config
	Auctions  repository.AuctionDB
	Ledger    repository.LedgerDB
	Catalog   *catalog.Registry
	Disburser payout.Disburser
	Notifier  notify.Notifier
	Clock     utils.Clock
}

// App is the assembled engine
type App struct {
	Router     *gin.Engine
	Lifecycle  *lifecycle.Manager
	Bidding    *bidding.BiddingService
	Payouts    *payout.Ledger
	Settlement *settlement.Engine
	Scheduler  *scheduler.Scheduler

	events *notify.Async
}

// New builds the engine. Bidding, lifecycle and settlement share one auction
// lock table; the payout ledger keys its own table by seller.
func New(opts Options) *App {
	if opts.Auctions == nil {
		opts.Auctions = repository.NewMemoryRepo()
	}
	if opts.Ledger == nil {
		opts.Ledger = repository.NewMemoryLedger()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.NewRegistry()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.LogNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock
	}
	cfg := opts.Config

	events := notify.NewAsync(opts.Notifier, cfg.NotifyBuffer)
	auctionLocks := locker.New()

	manager := lifecycle.NewManager(lifecycle.Deps{
		Repo:     opts.Auctions,
		Locks:    auctionLocks,
		Catalog:  opts.Catalog,
		Sellers:  opts.Catalog,
		Notifier: events,
		Clock:    opts.Clock,
	})
	biddingSvc := bidding.NewBiddingService(opts.Auctions, auctionLocks, opts.Clock)
	ledger := payout.NewLedger(payout.Deps{
		Store:     opts.Ledger,
		Locks:     locker.New(),
		Disburser: opts.Disburser,
		Notifier:  events,
		Sellers:   opts.Catalog,
		Clock:     opts.Clock,
	}, payout.Config{
		MinimumPayout: cfg.MinimumPayout,
		HoldPeriod:    cfg.EscrowHoldPeriod,
		PayoutFeeRate: cfg.PayoutFeeRate,
	})
	engine := settlement.NewEngine(manager, ledger, opts.Auctions, events, cfg.PlatformFeeRate, opts.Clock)
	sweeper := scheduler.New(manager, engine, ledger, cfg.SweepInterval, opts.Clock)

	router := server.SetupRouter(server.Services{
		Auctions: manager,
		Bidding:  biddingSvc,
		Payouts:  ledger,
	}, cfg.AllowedOrigins)

	return &App{
		Router:     router,
		Lifecycle:  manager,
		Bidding:    biddingSvc,
		Payouts:    ledger,
		Settlement: engine,
		Scheduler:  sweeper,
		events:     events,
	}
}

// Close flushes queued notifications. Stop the scheduler and HTTP server first.
func (a *App) Close() {
	a.events.Close()
}
