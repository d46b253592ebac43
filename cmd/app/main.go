package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashveil/progression-engine/internal/award"
	"github.com/ashveil/progression-engine/internal/bootstrap"
	"github.com/ashveil/progression-engine/internal/config"
	"github.com/ashveil/progression-engine/internal/database"
	"github.com/ashveil/progression-engine/internal/handler"
	"github.com/ashveil/progression-engine/internal/milestone"
	"github.com/ashveil/progression-engine/internal/server"
	"github.com/ashveil/progression-engine/internal/sse"
	"github.com/ashveil/progression-engine/internal/summary"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)
	slog.Info("Starting progression engine",
		"environment", cfg.Environment,
		"version", cfg.Version,
		"port", cfg.Port)

	ctx := context.Background()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMaxIdleTime, cfg.DBMaxConnLife)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	defs, err := bootstrap.LoadRewardDefinitions(cfg)
	if err != nil {
		slog.Error("Failed to load reward definitions", "error", err)
		os.Exit(1)
	}

	catalog, err := bootstrap.BuildCurves()
	if err != nil {
		slog.Error("Failed to build experience curves", "error", err)
		os.Exit(1)
	}
	resolver := milestone.NewResolver(defs)

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		slog.Error("Failed to initialize event system", "error", err)
		os.Exit(1)
	}

	stores := bootstrap.InitializeStores(dbPool, catalog, resolver, cfg)

	summaries := summary.NewService(stores.Ledger, catalog, defs, cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	awards := award.NewService(stores.Guard, stores.Ledger, summaries, publisher)

	hub := sse.NewHub()
	hub.Start()

	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus: eventBus,
		Hub:      hub,
	}); err != nil {
		slog.Error("Failed to register event handlers", "error", err)
		os.Exit(1)
	}

	progressHandler := handler.NewProgressHandler(awards, summaries, stores.Ledger)
	adminHandler := handler.NewAdminHandler(awards)

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, progressHandler, adminHandler, hub)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "port", cfg.Port)
		serverErr <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:       srv,
		AwardService: awards,
		Hub:          hub,
	})
}
