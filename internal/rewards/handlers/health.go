package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports service and storage health.
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	dbError := ""

	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "unhealthy"
			dbError = err.Error()
			h.logger.Errorf("Database health check failed: %v", err)
		}
	}

	status := http.StatusOK
	if dbStatus != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "rewards",
		"database": gin.H{
			"status": dbStatus,
			"error":  dbError,
		},
	})
}
