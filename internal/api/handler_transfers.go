package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bobina-estoque-backend/internal/store"
	"bobina-estoque-backend/internal/transfer"
)

// operatorHeader carries the stable operator id the excluded auth layer
// attaches to every authenticated session.
const operatorHeader = "X-Operator-ID"

// Quantity carries no binding tag: a zero or missing quantity must reach
// the coordinator so the rejection reports the invalid_quantity kind.
type transferRequest struct {
	ReelID    string `json:"reel_id" binding:"required"`
	MachineID string `json:"machine_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// CreateTransfer handles POST /api/transfers: the one-shot "move N units
// of reel R onto machine M" operation.
func (h *Handler) CreateTransfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operatorID := c.GetHeader(operatorHeader)
	if operatorID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + operatorHeader + " header"})
		return
	}

	result, err := h.coordinator.Transfer(c.Request.Context(), transfer.Request{
		ReelID:     req.ReelID,
		MachineID:  req.MachineID,
		Quantity:   req.Quantity,
		OperatorID: operatorID,
		Notes:      req.Notes,
	})
	if err != nil {
		h.abortTransferError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// abortTransferError maps each coordinator error kind to a status code
// and carries the available quantity for insufficient-stock rejections.
func (h *Handler) abortTransferError(c *gin.Context, err error) {
	var insufficient *store.InsufficientStockError
	switch {
	case errors.Is(err, transfer.ErrInvalidQuantity):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"kind":  "invalid_quantity",
		})
	case errors.Is(err, transfer.ErrMissingOperator):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"kind":  "missing_operator",
		})
	case errors.Is(err, transfer.ErrReelNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
			"kind":  "reel_not_found",
		})
	case errors.Is(err, transfer.ErrMachineNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
			"kind":  "machine_not_found",
		})
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":              insufficient.Error(),
			"kind":               "insufficient_stock",
			"quantity_available": insufficient.Available,
		})
	default:
		// Compensated internal failures and unreachable stores: the
		// transfer did not happen and the caller may try again later.
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "transfer could not be completed, no stock was moved",
			"kind":  "store_unavailable",
		})
	}
}
