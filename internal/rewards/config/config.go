package config

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tradequest/rewards-backend/pkg/env"
)

type Config struct {
	devMode bool

	// HTTP server port
	rpcPort string

	// ScyllaDB contact point
	databaseHost string
	databasePort string

	// Identity lookup service, empty disables enrichment
	identityServiceURL string

	// Daily bonus distribution
	bonusCronSpec      string
	bonusWorkers       int
	bonusCatchUpOnBoot bool

	// Leaderboard projection
	leaderboardMaxEntries int
	leaderboardStaleness  time.Duration
}

var cfg Config

// Init loads configuration from the environment, with .env as a fallback for
// local development.
func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}
	cfg = Config{
		devMode:               env.GetEnvBool("DEV_MODE", false),
		rpcPort:               env.GetEnvString("REWARDS_RPC_PORT", "9007"),
		databaseHost:          env.GetEnvString("DATABASE_HOST", "localhost"),
		databasePort:          env.GetEnvString("DATABASE_HOST_PORT", "9042"),
		identityServiceURL:    env.GetEnvString("IDENTITY_SERVICE_URL", ""),
		bonusCronSpec:         env.GetEnvString("BONUS_CRON_SPEC", "0 0 * * *"),
		bonusWorkers:          env.GetEnvInt("BONUS_WORKERS", 8),
		bonusCatchUpOnBoot:    env.GetEnvBool("BONUS_CATCH_UP_ON_BOOT", true),
		leaderboardMaxEntries: env.GetEnvInt("LEADERBOARD_MAX_ENTRIES", 500),
		leaderboardStaleness:  env.GetEnvDuration("LEADERBOARD_STALENESS", 5*time.Minute),
	}
	if err := validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

func validateConfig() error {
	if cfg.rpcPort == "" {
		return fmt.Errorf("invalid rewards rpc port")
	}
	if cfg.databaseHost == "" || cfg.databasePort == "" {
		return fmt.Errorf("invalid database address: %s:%s", cfg.databaseHost, cfg.databasePort)
	}
	if cfg.bonusWorkers < 1 {
		return fmt.Errorf("bonus workers must be >= 1, got %d", cfg.bonusWorkers)
	}
	if cfg.leaderboardMaxEntries < 1 {
		return fmt.Errorf("leaderboard max entries must be >= 1, got %d", cfg.leaderboardMaxEntries)
	}
	return nil
}

func IsDevMode() bool {
	return cfg.devMode
}

func GetRPCPort() string {
	return cfg.rpcPort
}

func GetDatabaseHostAddress() string {
	return cfg.databaseHost
}

func GetDatabaseHostPort() string {
	return cfg.databasePort
}

func GetIdentityServiceURL() string {
	return cfg.identityServiceURL
}

func GetBonusCronSpec() string {
	return cfg.bonusCronSpec
}

func GetBonusWorkers() int {
	return cfg.bonusWorkers
}

func GetBonusCatchUpOnBoot() bool {
	return cfg.bonusCatchUpOnBoot
}

func GetLeaderboardMaxEntries() int {
	return cfg.leaderboardMaxEntries
}

func GetLeaderboardStaleness() time.Duration {
	return cfg.leaderboardStaleness
}
