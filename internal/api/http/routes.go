package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the API on router. Everything under /api except login
// passes through identity first.
func (h *Handlers) Register(router gin.IRouter, identity gin.HandlerFunc) {
	router.GET("/health", h.Health)
	router.POST("/api/auth/login", h.Login)

	api := router.Group("/api", identity)

	// Files
	api.GET("/files", h.GetFiles)
	api.POST("/files", h.PostFiles)
	api.DELETE("/files", h.DeleteFile)
	api.POST("/files/delete", h.DeleteMany)
	api.POST("/files/copy", h.CopyMany)
	api.POST("/files/move", h.MoveMany)

	// Folders
	api.GET("/folders", h.ListFolders)
	api.GET("/folders/config", h.GetFolderConfig)
	api.POST("/folders/config", h.SaveFolderConfig)
	api.POST("/folders/check", h.CheckFolder)
	api.PUT("/folders/check", h.EnsureFolder)

	// System
	api.GET("/drives", h.ListDrives)
	api.GET("/operations", h.ListOperations)
	api.GET("/operations/:id", h.GetOperation)
}
