// Package rewards wires the HTTP surface of the rewards service: routing,
// middleware and the handler set.
package rewards

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradequest/rewards-backend/internal/rewards/bonus"
	"github.com/tradequest/rewards-backend/internal/rewards/config"
	"github.com/tradequest/rewards-backend/internal/rewards/handlers"
	"github.com/tradequest/rewards-backend/internal/rewards/leaderboard"
	"github.com/tradequest/rewards-backend/internal/rewards/ledger"
	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

type Server struct {
	router  *gin.Engine
	handler *handlers.Handler
	logger  logging.Logger
}

func NewServer(
	ledgerSvc *ledger.Service,
	store repository.Store,
	ranker *leaderboard.Ranker,
	engine *bonus.Engine,
	db handlers.Pinger,
	logger logging.Logger,
) *Server {
	if !config.IsDevMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(metricsMiddleware())

	s := &Server{
		router:  router,
		handler: handlers.NewHandler(ledgerSvc, store, ranker, engine, db, logger),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, endpoint, fmt.Sprintf("%d", c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handler.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")

	api.POST("/transactions", s.handler.CreateTransaction)
	api.GET("/users/:address", s.handler.GetUserProfile)
	api.GET("/users/:address/transactions", s.handler.GetUserTransactions)
	api.GET("/users/:address/achievements", s.handler.GetUserAchievements)

	api.GET("/leaderboard", s.handler.GetLeaderboard)
	api.POST("/leaderboard/refresh", s.handler.RefreshLeaderboard)

	api.POST("/rewards/distribute", s.handler.DistributeBonuses)
	api.GET("/stats", s.handler.GetPlatformStats)
}

// GetRouter returns the underlying gin router, for embedding in an
// http.Server with graceful shutdown.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Start runs the HTTP server on the given port. For production deployments
// prefer GetRouter with a custom http.Server.
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting rewards server on port %s", port)
	return s.router.Run(fmt.Sprintf(":%s", port))
}
