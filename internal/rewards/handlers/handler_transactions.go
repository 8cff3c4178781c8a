package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradequest/rewards-backend/internal/rewards/metrics"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
)

const defaultTransactionLimit = 50

// CreateTransaction records a point-earning transaction event.
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req types.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("[CreateTransaction] Invalid request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  "INVALID_REQUEST_BODY",
		})
		return
	}

	trackDBOp := metrics.TrackDBOperation("write", "transactions")
	tx, err := h.ledger.RecordTransaction(c.Request.Context(), &req)
	trackDBOp(err)
	if err != nil {
		h.logger.Errorf("[CreateTransaction] Failed to record transaction for %s: %v", req.UserAddress, err)
		h.respondError(c, err)
		return
	}

	metrics.TransactionsRecordedTotal.WithLabelValues(string(tx.Type)).Inc()
	metrics.PointsAwardedTotal.WithLabelValues(string(tx.Type)).Add(float64(tx.Points))

	h.logger.Infof("[CreateTransaction] Recorded %s transaction %s for %s", tx.Type, tx.ID, tx.UserAddress)
	c.JSON(http.StatusCreated, tx)
}

// GetUserTransactions lists a user's transactions, newest first.
func (h *Handler) GetUserTransactions(c *gin.Context) {
	address := strings.ToLower(c.Param("address"))
	if !types.IsValidEthAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user address",
			"code":  "INVALID_ADDRESS",
		})
		return
	}

	limit := defaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
				"code":  "INVALID_LIMIT",
			})
			return
		}
		limit = parsed
	}

	trackDBOp := metrics.TrackDBOperation("read", "transactions")
	transactions, err := h.store.Transactions().ListByUser(c.Request.Context(), address, limit)
	trackDBOp(err)
	if err != nil {
		h.logger.Errorf("[GetUserTransactions] Failed to list transactions for %s: %v", address, err)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_address": address,
		"transactions": transactions,
		"count":        len(transactions),
	})
}
