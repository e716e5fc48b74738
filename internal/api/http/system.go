package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
)

// ListDrives returns mounted volumes. Enumeration failures yield an empty list.
func (h *Handlers) ListDrives(c *gin.Context) {
	c.JSON(http.StatusOK, h.gw.ListVolumes(c.Request.Context()))
}

// ListOperations returns the caller's recent operations, newest first
func (h *Handlers) ListOperations(c *gin.Context) {
	ops, err := h.gw.Operations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ops)
}

// GetOperation returns one of the caller's operations
func (h *Handlers) GetOperation(c *gin.Context) {
	op, err := h.gw.Operation(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}
