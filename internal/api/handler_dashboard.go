package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDashboard handles GET /api/dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.store.DashboardStats(c.Request.Context())
	if err != nil {
		abortStoreError(c, err, "failed to compute dashboard stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
