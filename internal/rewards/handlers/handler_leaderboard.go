package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
)

const defaultLeaderboardSize = 100

// GetLeaderboard returns the ranked projection, refreshed when stale.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	n := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
				"code":  "INVALID_LIMIT",
			})
			return
		}
		n = parsed
	}

	entries, err := h.ranker.TopN(c.Request.Context(), n)
	if err != nil {
		h.logger.Errorf("[GetLeaderboard] Failed to fetch leaderboard: %v", err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"count":       len(entries),
	})
}

// RefreshLeaderboard forces a projection recompute.
func (h *Handler) RefreshLeaderboard(c *gin.Context) {
	if err := h.ranker.Refresh(c.Request.Context()); err != nil {
		metrics.LeaderboardRefreshesTotal.WithLabelValues("error").Inc()
		h.logger.Errorf("[RefreshLeaderboard] Refresh failed: %v", err)
		h.respondError(c, err)
		return
	}

	metrics.LeaderboardRefreshesTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
