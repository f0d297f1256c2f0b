package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auction-engine/internal/app"
	"auction-engine/internal/catalog"
	"auction-engine/internal/config"
	"auction-engine/internal/database"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository/postgres"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Fatal("invalid log level", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := catalog.NewRegistry()
	prepopulateCatalog(registry)

	opts := app.Options{Config: cfg, Catalog: registry}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			utils.Fatal("failed to connect to database", map[string]any{"error": err.Error()})
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			utils.Fatal("failed to apply schema", map[string]any{"error": err.Error()})
		}
		opts.Auctions = postgres.NewAuctionStore(pool)
		opts.Ledger = postgres.NewLedgerStore(pool)
	}

	engine := app.New(opts)

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		engine.Scheduler.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "postgres": cfg.DatabaseURL != ""})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
	<-sweepDone
	engine.Close()
}

// prepopulateCatalog adds sample sellers and items to the in-memory catalog
func prepopulateCatalog(registry *catalog.Registry) {
	items := []model.AuctionItem{
		{ItemID: "item1", SellerID: "seller1", Title: "title1", Description: "description1", StartingPrice: decimal.NewFromInt(100)},
		{ItemID: "item2", SellerID: "seller1", Title: "title2", Description: "Description2", StartingPrice: decimal.NewFromInt(200)},
		{ItemID: "item3", SellerID: "seller2", Title: "title3", Description: "Description3", StartingPrice: decimal.NewFromInt(150)},
	}

	for _, item := range items {
		registry.AddItem(item)
	}
}
