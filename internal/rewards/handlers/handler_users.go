package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

// GetUserProfile returns the user's aggregate profile with its cached
// leaderboard rank.
func (h *Handler) GetUserProfile(c *gin.Context) {
	address := strings.ToLower(c.Param("address"))
	if !types.IsValidEthAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user address",
			"code":  "INVALID_ADDRESS",
		})
		return
	}

	trackDBOp := metrics.TrackDBOperation("read", "user_profiles")
	profile, err := h.store.Users().GetByAddress(c.Request.Context(), address)
	trackDBOp(err)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if rank, err := h.ranker.RankOf(c.Request.Context(), address); err == nil && rank > 0 {
		profile.CurrentRank = rank
	}

	c.JSON(http.StatusOK, profile)
}

// GetUserAchievements lists the user's unlocked achievements joined with
// their catalog definitions.
func (h *Handler) GetUserAchievements(c *gin.Context) {
	address := strings.ToLower(c.Param("address"))
	if !types.IsValidEthAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user address",
			"code":  "INVALID_ADDRESS",
		})
		return
	}

	trackDBOp := metrics.TrackDBOperation("read", "user_achievements")
	unlocked, err := h.store.Achievements().ListUnlocked(c.Request.Context(), address)
	trackDBOp(err)
	if err != nil {
		h.logger.Errorf("[GetUserAchievements] Failed to list achievements for %s: %v", address, err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_address": address,
		"achievements": unlocked,
		"count":        len(unlocked),
	})
}
