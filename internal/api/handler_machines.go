package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bobina-estoque-backend/internal/model"
	"bobina-estoque-backend/internal/store"
)

type createMachineRequest struct {
	Name       string  `json:"name" binding:"required"`
	Active     *bool   `json:"active"`
	OperatorID *string `json:"operator_id"`
}

type updateMachineRequest struct {
	Name       *string `json:"name"`
	Active     *bool   `json:"active"`
	OperatorID *string `json:"operator_id"`
}

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		abortStoreError(c, err, "failed to list machines")
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine handles GET /api/machines/:id.
func (h *Handler) GetMachine(c *gin.Context) {
	machine, err := h.store.GetMachine(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortStoreError(c, err, "failed to retrieve machine")
		return
	}
	c.JSON(http.StatusOK, machine)
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := model.Machine{
		Name:       req.Name,
		Active:     true,
		OperatorID: req.OperatorID,
	}
	if req.Active != nil {
		machine.Active = *req.Active
	}
	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachine handles PUT /api/machines/:id; toggling the active flag
// goes through here as well.
func (h *Handler) UpdateMachine(c *gin.Context) {
	var req updateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.UpdateMachine(c.Request.Context(), c.Param("id"), store.MachineUpdate{
		Name:       req.Name,
		Active:     req.Active,
		OperatorID: req.OperatorID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/machines/:id.
func (h *Handler) DeleteMachine(c *gin.Context) {
	if err := h.store.DeleteMachine(c.Request.Context(), c.Param("id")); err != nil {
		abortStoreError(c, err, "failed to delete machine")
		return
	}
	c.Status(http.StatusNoContent)
}
