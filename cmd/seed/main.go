package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"path/filepath"

	"finwiz/internal/repository"
	"finwiz/internal/service"
	"finwiz/pkg/config"
	"finwiz/pkg/logger"

	"go.uber.org/zap"
)

//go:embed sample_transactions.json
var sampleTransactions []byte

func main() {
	cacheFile := flag.String("cache", filepath.Join("cmd", "seed", ".seed_cache.json"), "file recording already seeded sources")
	force := flag.Bool("force", false, "seed even if the source was seeded before")
	noAI := flag.Bool("no-ai", false, "insert uncategorized rows without calling the AI model")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()

	src, err := loadSource(flag.Arg(0), sampleTransactions)
	if err != nil {
		appLogger.Fatal("Failed to load transactions", zap.Error(err))
	}

	store, err := repository.NewStore(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	if !repository.WaitUntilReady(ctx, store, cfg.Startup.ProbeAttempts, cfg.Startup.ProbeInterval, appLogger) {
		appLogger.Fatal("Storage is not reachable, nothing was seeded")
	}

	var categorizer BatchCategorizer
	if !*noAI {
		llmClient, err := service.NewLLMClient(ctx, &cfg.AI, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize AI client", zap.Error(err))
		}
		defer llmClient.Close()
		categorizer = service.NewCategorizationService(llmClient, cfg.AI.Timeout, appLogger)
	}

	appLogger.Info("Starting database seeding...", zap.String("source", src.Name))

	seeder := &Seeder{
		store:       store,
		categorizer: categorizer,
		cacheFile:   *cacheFile,
		force:       *force,
		logger:      appLogger,
	}

	inserted, err := seeder.Seed(ctx, src)
	if err != nil {
		appLogger.Fatal("Failed to seed transactions", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!", zap.Int("inserted", inserted))
}
