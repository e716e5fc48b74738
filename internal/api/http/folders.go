package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

type folderRequest struct {
	Path string `json:"path" binding:"required"`
}

// ListFolders returns the caller's folder grants
func (h *Handlers) ListFolders(c *gin.Context) {
	grants, err := h.gw.Grants(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

// GetFolderConfig returns the protected folder list
func (h *Handlers) GetFolderConfig(c *gin.Context) {
	list, err := h.gw.ProtectedPaths(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// SaveFolderConfig replaces the protected folder list
func (h *Handlers) SaveFolderConfig(c *gin.Context) {
	var entries []types.ProtectedPath
	if err := c.ShouldBindJSON(&entries); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if err := h.gw.SetProtectedPaths(c.Request.Context(), middleware.UserID(c), entries); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CheckFolder reports whether a path exists and is a directory
func (h *Handlers) CheckFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Path is required")
		return
	}
	exists, isDir, err := h.gw.FolderExists(c.Request.Context(), middleware.UserID(c), req.Path)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":      exists,
		"isDirectory": isDir,
		"path":        req.Path,
	})
}

// EnsureFolder creates a directory and any missing parents
func (h *Handlers) EnsureFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Path is required")
		return
	}
	if err := h.gw.EnsureFolder(c.Request.Context(), middleware.UserID(c), req.Path); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": req.Path})
}
