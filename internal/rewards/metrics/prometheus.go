package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// UptimeSeconds tracks the rewards service uptime in seconds
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "uptime_seconds",
		Help:      "The uptime of the rewards service in seconds",
	})

	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	// Ledger metrics
	TransactionsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "transactions_recorded_total",
		Help:      "Total point-earning transactions recorded",
	}, []string{"type"})

	PointsAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "points_awarded_total",
		Help:      "Total points awarded across all sources",
	}, []string{"source"})

	AchievementsUnlockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "achievements_unlocked_total",
		Help:      "Total achievement unlocks",
	}, []string{"achievement_id"})

	// Daily bonus distribution metrics
	BonusRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "bonus_runs_total",
		Help:      "Total daily bonus distribution runs",
	}, []string{"status"})

	BonusUsersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "bonus_users_processed_total",
		Help:      "Users processed by the bonus distribution, by outcome",
	}, []string{"outcome"})

	BonusRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "bonus_run_duration_seconds",
		Help:      "Duration of a full bonus distribution run",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// Leaderboard metrics
	LeaderboardRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "leaderboard_refreshes_total",
		Help:      "Total leaderboard projection refreshes",
	}, []string{"status"})

	// Database operation metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "database_operations_total",
		Help:      "Total database operations",
	}, []string{"operation", "table", "status"})

	DatabaseOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "database_operation_duration_seconds",
		Help:      "Database operation duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradequest",
		Subsystem: "rewards",
		Name:      "database_errors_total",
		Help:      "Total database errors by type",
	}, []string{"error_type"})
)

// StartUptimeTracking updates the uptime gauge once a minute until the service
// exits.
func StartUptimeTracking() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			UptimeSeconds.Set(time.Since(startTime).Seconds())
		}
	}()
}
