package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/bonus"
	"github.com/tradequest/rewards-backend/internal/rewards/leaderboard"
	"github.com/tradequest/rewards-backend/internal/rewards/ledger"
	"github.com/tradequest/rewards-backend/internal/rewards/repository"
	"github.com/tradequest/rewards-backend/pkg/errors"
	"github.com/tradequest/rewards-backend/pkg/logging"
)

// Pinger reports storage reachability for health checks.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type Handler struct {
	ledger *ledger.Service
	store  repository.Store
	ranker *leaderboard.Ranker
	engine *bonus.Engine
	db     Pinger // nil when running on the in-memory store
	logger logging.Logger
}

func NewHandler(
	ledgerSvc *ledger.Service,
	store repository.Store,
	ranker *leaderboard.Ranker,
	engine *bonus.Engine,
	db Pinger,
	logger logging.Logger,
) *Handler {
	return &Handler{
		ledger: ledgerSvc,
		store:  store,
		ranker: ranker,
		engine: engine,
		db:     db,
		logger: logger,
	}
}

// respondError maps the error taxonomy onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
			"code":  "NOT_FOUND",
		})
	case errors.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"code":  "CONFLICT",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
			"code":  "INTERNAL_ERROR",
		})
	}
}
