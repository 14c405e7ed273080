// -----------------------------------------------------------------------
// DailyBrief - Daily content generation scheduler
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/dailybrief/internal/common"
	"github.com/ternarybob/dailybrief/internal/content"
	"github.com/ternarybob/dailybrief/internal/market"
	"github.com/ternarybob/dailybrief/internal/services/daily"
	"github.com/ternarybob/dailybrief/internal/services/llm"
	"github.com/ternarybob/dailybrief/internal/services/search"
	"github.com/ternarybob/dailybrief/internal/storage/badger"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("DailyBrief version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = *configFileC
	}

	// Auto-discover config file if not specified
	if configPath == "" {
		if _, err := os.Stat("dailybrief.toml"); err == nil {
			configPath = "dailybrief.toml"
		}
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Initialize logger
	// 3. Print banner
	// 4. Open storage, build services, start scheduler
	config, err := common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("version", common.GetFullVersion()).
		Str("environment", config.Environment).
		Str("timezone", config.Jobs.Timezone).
		Msg("Starting DailyBrief")

	if err := run(config, logger); err != nil {
		logger.Fatal().Err(err).Msg("DailyBrief exited with error")
		os.Exit(1)
	}
}

func run(config *common.Config, logger arbor.ILogger) error {
	ctx := context.Background()

	// Storage
	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	contentStorage := badger.NewContentStorage(db, logger)

	// Generation collaborators
	generator, err := llm.NewClaudeService(&config.Claude, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}
	defer generator.Close()

	deps := content.Deps{
		Generator: generator,
		Logger:    logger,
	}

	// Context providers are optional: missing keys disable enrichment, not the jobs
	if config.Gemini.APIKey != "" {
		events, err := search.NewGeminiService(ctx, &config.Gemini, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Context search unavailable, jobs will generate without recent events")
		} else {
			deps.Events = events
		}
	} else {
		logger.Info().Msg("No Gemini API key configured, context search disabled")
	}

	if config.Market.APIKey != "" {
		client := market.NewClient(config.Market.APIKey,
			market.WithLogger(logger),
			market.WithRateLimit(config.Market.RateLimit),
			market.WithHTTPClient(&http.Client{Timeout: common.MustDuration(config.Market.Timeout)}),
		)
		deps.Snapshot = market.NewSnapshotService(client, config.Market.Indices, logger)
	} else {
		logger.Info().Msg("No market API key configured, snapshot context disabled")
	}

	// Scheduler
	scheduler := daily.NewService(contentStorage, logger,
		daily.WithContextBudget(common.MustDuration(config.Jobs.ContextBudget)))

	specs, err := content.BuildJobSpecs(config, deps)
	if err != nil {
		return fmt.Errorf("failed to build job specs: %w", err)
	}
	for _, spec := range specs {
		if err := scheduler.Register(spec); err != nil {
			return fmt.Errorf("failed to register job: %w", err)
		}
	}

	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	if err := scheduler.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Scheduler stop reported error")
	}

	// Give in-flight pipelines a moment to persist before closing storage
	time.Sleep(500 * time.Millisecond)

	logger.Info().Msg("DailyBrief stopped")
	return nil
}
