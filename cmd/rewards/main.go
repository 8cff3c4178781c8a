package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rewards "github.com/tradequest/rewards-backend/internal/rewards"
	"github.com/tradequest/rewards-backend/internal/rewards/achievements"
	"github.com/tradequest/rewards-backend/internal/rewards/bonus"
	"github.com/tradequest/rewards-backend/internal/rewards/config"
	"github.com/tradequest/rewards-backend/internal/rewards/leaderboard"
	"github.com/tradequest/rewards-backend/internal/rewards/ledger"
	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/internal/rewards/scheduler"
	"github.com/tradequest/rewards-backend/internal/rewards/tiers"
	"github.com/tradequest/rewards-backend/pkg/client/identity"
	"github.com/tradequest/rewards-backend/pkg/database"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	logConfig := logging.LoggerConfig{
		ProcessName:   logging.RewardsProcess,
		IsDevelopment: config.IsDevMode(),
	}
	logger, err := logging.NewZapLogger(logConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	logger.Info("Starting rewards service...",
		"dev_mode", config.IsDevMode(),
		"port", config.GetRPCPort(),
		"database", config.GetDatabaseHostAddress(),
	)

	tierTable, err := tiers.NewTable(tiers.DefaultTiers)
	if err != nil {
		logger.Fatalf("Invalid tier table: %v", err)
	}

	dbConfig := database.NewConfig(config.GetDatabaseHostAddress(), config.GetDatabaseHostPort())
	conn, err := database.NewConnection(dbConfig)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := database.InitSchema(conn.Session()); err != nil {
		logger.Fatalf("Failed to initialize schema: %v", err)
	}

	store := repository.NewScyllaStore(conn, tierTable, logger)

	var identityClient *identity.Client
	if url := config.GetIdentityServiceURL(); url != "" {
		identityClient, err = identity.NewClient(logger, url)
		if err != nil {
			logger.Errorf("Failed to create identity client, continuing without enrichment: %v", err)
		} else {
			defer identityClient.Close()
		}
	}

	evaluator := achievements.NewEvaluator(store.Achievements(), store.Transactions(), achievements.DefaultDefinitions, logger)

	var lookup ledger.IdentityLookup
	if identityClient != nil {
		lookup = identityClient
	}
	ledgerSvc := ledger.NewService(store.Users(), store.Transactions(), evaluator, tierTable, lookup, logger)

	ranker := leaderboard.NewRanker(store.Users(), logger,
		leaderboard.WithMaxEntries(config.GetLeaderboardMaxEntries()),
		leaderboard.WithStaleness(config.GetLeaderboardStaleness()),
	)

	engine := bonus.NewEngine(store.Users(), store.Bonuses(), evaluator, logger,
		bonus.WithWorkers(config.GetBonusWorkers()),
	)

	bonusScheduler := scheduler.New(engine, logger, config.GetBonusCronSpec(), config.GetBonusCatchUpOnBoot())
	if err := bonusScheduler.Start(); err != nil {
		logger.Fatalf("Failed to start bonus scheduler: %v", err)
	}

	metrics.StartUptimeTracking()

	server := rewards.NewServer(ledgerSvc, store, ranker, engine, conn, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetRPCPort()),
		Handler: server.GetRouter(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("Rewards service listening on port %s", config.GetRPCPort())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error received", "error", err)
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())
	}

	bonusScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed, forcing close: %v", err)
		if err := srv.Close(); err != nil {
			logger.Errorf("Forced close failed: %v", err)
		}
	}

	logger.Info("Rewards service stopped")
}
