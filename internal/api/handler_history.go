package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bobina-estoque-backend/internal/store"
)

// GetHistory handles GET /api/history. Entries come back ordered by
// usage time ascending; reel_id, machine_id, operator_id, from and to
// narrow the result.
func (h *Handler) GetHistory(c *gin.Context) {
	filter := store.LedgerFilter{
		ReelID:     c.Query("reel_id"),
		MachineID:  c.Query("machine_id"),
		OperatorID: c.Query("operator_id"),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp format, use RFC3339"})
			return
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp format, use RFC3339"})
			return
		}
		filter.To = to
	}

	entries, err := h.store.QueryLedger(c.Request.Context(), filter)
	if err != nil {
		abortStoreError(c, err, "failed to query history")
		return
	}
	c.JSON(http.StatusOK, entries)
}
