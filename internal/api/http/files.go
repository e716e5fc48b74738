package http

import (
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// fileAction is the JSON body of POST /api/files
type fileAction struct {
	Action      string   `json:"action" binding:"required"`
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Content     *string  `json:"content"`
	Destination string   `json:"destination"`
	Targets     []string `json:"targets"`
}

// bulkRequest is the JSON body of the bulk endpoints
type bulkRequest struct {
	Paths       []string `json:"paths" binding:"required"`
	Destination string   `json:"destination"`
}

// GetFiles lists a directory, describes or searches an entry, or streams a file
func (h *Handlers) GetFiles(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	logical := c.DefaultQuery("path", "/")

	switch action := c.Query("action"); action {
	case "download", "view":
		disposition := types.DispositionInline
		if action == "download" {
			disposition = types.DispositionAttachment
		}
		stream, err := h.gw.ReadFile(ctx, userID, logical, disposition)
		if err != nil {
			h.fail(c, err)
			return
		}
		defer stream.Close()

		c.DataFromReader(http.StatusOK, stream.Size, stream.MimeType, stream, map[string]string{
			"Content-Disposition": stream.ContentDisposition(),
			"Last-Modified":       stream.ModifiedAt.UTC().Format(http.TimeFormat),
		})

	case "search":
		limit, _ := strconv.Atoi(c.Query("limit"))
		found, err := h.gw.Search(ctx, userID, logical, c.Query("pattern"), limit)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, found)

	case "details":
		details, err := h.gw.Details(ctx, userID, logical)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, details)

	case "", "list":
		entry, err := h.gw.GetEntry(ctx, userID, logical)
		if err != nil {
			h.fail(c, err)
			return
		}
		if !entry.IsDir {
			c.JSON(http.StatusOK, entry)
			return
		}
		entries, err := h.gw.ListDirectory(ctx, userID, logical)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)

	default:
		badRequest(c, "Invalid action")
	}
}

// PostFiles runs a JSON file action or stores a multipart upload
func (h *Handlers) PostFiles(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.upload(c)
		return
	}

	var req fileAction
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if req.Path == "" {
		badRequest(c, "path is required")
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	switch req.Action {
	case "create_folder":
		entry, err := h.gw.CreateFolder(ctx, userID, req.Path, req.Name)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "file": entry})

	case "read_file":
		content, err := h.gw.ReadText(ctx, userID, req.Path)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": content})

	case "write_file":
		if req.Content == nil {
			badRequest(c, "content is required")
			return
		}
		if err := h.gw.WriteFile(ctx, userID, req.Path, []byte(*req.Content)); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "rename":
		entry, err := h.gw.Rename(ctx, userID, req.Path, req.Name)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "file": entry})

	case "copy", "move":
		if req.Destination == "" {
			badRequest(c, "destination is required")
			return
		}
		transfer := h.gw.Copy
		if req.Action == "move" {
			transfer = h.gw.Move
		}
		if err := transfer(ctx, userID, req.Path, req.Destination); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	case "zip":
		out, err := h.gw.Archive(ctx, userID, req.Path, req.Targets)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "file": path.Base(out), "path": out})

	case "unzip":
		dest, err := h.gw.Extract(ctx, userID, req.Path)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "path": dest})

	default:
		badRequest(c, "Invalid action")
	}
}

func (h *Handlers) upload(c *gin.Context) {
	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	}

	header, err := c.FormFile("file")
	dir := c.PostForm("path")
	if err != nil || dir == "" {
		badRequest(c, "Missing file or path")
		return
	}

	f, err := header.Open()
	if err != nil {
		badRequest(c, "Unreadable upload: "+err.Error())
		return
	}
	defer f.Close()

	entry, err := h.gw.Upload(c.Request.Context(), middleware.UserID(c), dir, header.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("File uploaded",
		zap.String("user", middleware.UserID(c)),
		zap.String("path", entry.ID),
		zap.Int64("size", entry.Size))
	c.JSON(http.StatusOK, gin.H{"success": true, "file": entry})
}

// DeleteFile removes the entry named by the path query parameter
func (h *Handlers) DeleteFile(c *gin.Context) {
	logical := c.Query("path")
	if logical == "" {
		badRequest(c, "path is required")
		return
	}
	if err := h.gw.Delete(c.Request.Context(), middleware.UserID(c), logical); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteMany removes every listed path and reports per-item failures
func (h *Handlers) DeleteMany(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	result, err := h.gw.DeleteMany(c.Request.Context(), middleware.UserID(c), req.Paths)
	h.bulkResponse(c, result, err)
}

// CopyMany copies every listed path into the destination directory
func (h *Handlers) CopyMany(c *gin.Context) {
	h.transferMany(c, false)
}

// MoveMany moves every listed path into the destination directory
func (h *Handlers) MoveMany(c *gin.Context) {
	h.transferMany(c, true)
}

func (h *Handlers) transferMany(c *gin.Context, move bool) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}
	if req.Destination == "" {
		badRequest(c, "destination is required")
		return
	}

	transfer := h.gw.CopyMany
	if move {
		transfer = h.gw.MoveMany
	}
	result, err := transfer(c.Request.Context(), middleware.UserID(c), req.Paths, req.Destination)
	h.bulkResponse(c, result, err)
}

func (h *Handlers) bulkResponse(c *gin.Context, result types.BulkResult, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   len(result.Failures) == 0,
		"succeeded": result.Succeeded,
		"failures":  result.Failures,
	})
}
