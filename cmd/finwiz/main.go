package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finwiz/internal/api"
	"finwiz/internal/api/handlers"
	"finwiz/internal/repository"
	"finwiz/internal/service"
	"finwiz/pkg/config"
	"finwiz/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

// @title FinWiz API
// @version 1.0.0
// @description API for managing personal finance transactions and getting AI-powered insights.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinWiz service",
		zap.String("version", version),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := repository.NewStore(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// Degraded start is allowed, requests fail until the database is reachable
	repository.WaitUntilReady(ctx, store, cfg.Startup.ProbeAttempts, cfg.Startup.ProbeInterval, appLogger)

	// Initialize services
	llmClient, err := service.NewLLMClient(ctx, &cfg.AI, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AI client", zap.Error(err))
	}
	defer llmClient.Close()

	categorizer := service.NewCategorizationService(llmClient, cfg.AI.Timeout, appLogger)
	advisor := service.NewAdviceService(llmClient, cfg.AI.Timeout, cfg.Advice.CurrencySymbol, appLogger)

	// Initialize handlers
	h := api.Handlers{
		Transactions: handlers.NewTransactionHandler(appLogger),
		AI:           handlers.NewAIHandler(categorizer, advisor, appLogger),
		Health:       handlers.NewHealthHandler(store, version, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, store, &cfg.Server, appLogger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Server stopped with error", zap.Error(err))
	}

	appLogger.Info("Server stopped")
}
