package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bobina-estoque-backend/internal/model"
	"bobina-estoque-backend/internal/store"
)

type createReelRequest struct {
	Code              string         `json:"code" binding:"required"`
	Material          string         `json:"material" binding:"required"`
	Color             string         `json:"color"`
	ThicknessMicrons  float64        `json:"thickness_microns"`
	WidthMM           float64        `json:"width_mm"`
	WeightKG          float64        `json:"weight_kg"`
	QuantityAvailable int            `json:"quantity_available" binding:"min=0"`
	Priority          model.Priority `json:"priority"`
	Location          string         `json:"location"`
	Supplier          string         `json:"supplier"`
	Notes             string         `json:"notes"`
}

type updateReelRequest struct {
	Code              *string         `json:"code"`
	Material          *string         `json:"material"`
	Color             *string         `json:"color"`
	ThicknessMicrons  *float64        `json:"thickness_microns"`
	WidthMM           *float64        `json:"width_mm"`
	WeightKG          *float64        `json:"weight_kg"`
	QuantityAvailable *int            `json:"quantity_available"`
	Priority          *model.Priority `json:"priority"`
	Location          *string         `json:"location"`
	Supplier          *string         `json:"supplier"`
	Notes             *string         `json:"notes"`
}

// ListReels handles GET /api/reels with optional priority/status/material
// filters. Results come back highest priority first.
func (h *Handler) ListReels(c *gin.Context) {
	filter := store.ReelFilter{
		Priority: model.Priority(c.Query("priority")),
		Status:   store.StockStatus(c.Query("status")),
		Material: c.Query("material"),
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid priority filter"})
		return
	}
	if !filter.Status.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	reels, err := h.store.ListReels(c.Request.Context(), filter)
	if err != nil {
		abortStoreError(c, err, "failed to list reels")
		return
	}
	c.JSON(http.StatusOK, reels)
}

// GetReel handles GET /api/reels/:id.
func (h *Handler) GetReel(c *gin.Context) {
	reel, err := h.store.GetReel(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortStoreError(c, err, "failed to retrieve reel")
		return
	}
	c.JSON(http.StatusOK, reel)
}

// CreateReel handles POST /api/reels.
func (h *Handler) CreateReel(c *gin.Context) {
	var req createReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reel := model.Reel{
		Code:              req.Code,
		Material:          req.Material,
		Color:             req.Color,
		ThicknessMicrons:  req.ThicknessMicrons,
		WidthMM:           req.WidthMM,
		WeightKG:          req.WeightKG,
		QuantityAvailable: req.QuantityAvailable,
		Priority:          req.Priority,
		Location:          req.Location,
		Supplier:          req.Supplier,
		Notes:             req.Notes,
	}
	if err := h.store.CreateReel(c.Request.Context(), &reel); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, reel)
}

// UpdateReel handles PUT /api/reels/:id.
func (h *Handler) UpdateReel(c *gin.Context) {
	var req updateReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := store.ReelUpdate{
		Code:              req.Code,
		Material:          req.Material,
		Color:             req.Color,
		ThicknessMicrons:  req.ThicknessMicrons,
		WidthMM:           req.WidthMM,
		WeightKG:          req.WeightKG,
		QuantityAvailable: req.QuantityAvailable,
		Priority:          req.Priority,
		Location:          req.Location,
		Supplier:          req.Supplier,
		Notes:             req.Notes,
	}
	reel, err := h.store.UpdateReel(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reel)
}

// DeleteReel handles DELETE /api/reels/:id. Reels with usage history are
// never hard-deleted; the store reports a conflict instead.
func (h *Handler) DeleteReel(c *gin.Context) {
	if err := h.store.DeleteReel(c.Request.Context(), c.Param("id")); err != nil {
		abortStoreError(c, err, "failed to delete reel")
		return
	}
	c.Status(http.StatusNoContent)
}
