package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/streak"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

// GetPlatformStats returns aggregate counters for the whole platform.
func (h *Handler) GetPlatformStats(c *gin.Context) {
	ctx := c.Request.Context()

	trackDBOp := metrics.TrackDBOperation("read", "user_profiles")
	totalUsers, err := h.store.Users().Count(ctx)
	trackDBOp(err)
	if err != nil {
		h.logger.Errorf("[GetPlatformStats] Failed to count users: %v", err)
		h.respondError(c, err)
		return
	}

	totalPoints, err := h.store.Users().TotalPoints(ctx)
	if err != nil {
		h.logger.Errorf("[GetPlatformStats] Failed to sum points: %v", err)
		h.respondError(c, err)
		return
	}

	totalTransactions, err := h.store.Transactions().CountAll(ctx)
	if err != nil {
		h.logger.Errorf("[GetPlatformStats] Failed to count transactions: %v", err)
		h.respondError(c, err)
		return
	}

	today := streak.DayKey(time.Now().UTC())
	bonusesToday, err := h.store.Bonuses().CountForDay(ctx, today)
	if err != nil {
		h.logger.Errorf("[GetPlatformStats] Failed to count today's bonuses: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.PlatformStats{
		TotalUsers:        totalUsers,
		TotalTransactions: totalTransactions,
		TotalPoints:       totalPoints,
		BonusesToday:      bonusesToday,
		GeneratedAt:       time.Now().UTC(),
	})
}
