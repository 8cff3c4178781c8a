package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
)

// DistributeBonuses triggers a daily bonus run. Reruns for the same day are
// no-ops per user, so the endpoint is safe to call repeatedly.
func (h *Handler) DistributeBonuses(c *gin.Context) {
	h.logger.Info("[DistributeBonuses] Starting manual bonus distribution")

	result, err := h.engine.Distribute(c.Request.Context())
	if err != nil {
		metrics.BonusRunsTotal.WithLabelValues("error").Inc()
		h.logger.Errorf("[DistributeBonuses] Distribution failed: %v", err)
		h.respondError(c, err)
		return
	}

	status := "success"
	if !result.Success() {
		status = "partial"
	}
	metrics.BonusRunsTotal.WithLabelValues(status).Inc()
	metrics.BonusUsersProcessed.WithLabelValues("bonused").Add(float64(result.Bonused))
	metrics.BonusUsersProcessed.WithLabelValues("skipped").Add(float64(result.Skipped))
	metrics.BonusUsersProcessed.WithLabelValues("failed").Add(float64(len(result.Failed)))
	metrics.BonusRunDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())

	code := http.StatusOK
	if !result.Success() {
		code = http.StatusMultiStatus
	}
	c.JSON(code, result)
}
