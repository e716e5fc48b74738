package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/users"
	"github.com/GriffinCanCode/panelfs/backend/internal/gateway"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// DefaultTokenTTL is the lifetime of tokens issued by Login
const DefaultTokenTTL = 24 * time.Hour

// Accounts looks up users for password login
type Accounts interface {
	GetByUsername(username string) (*users.User, error)
}

// Options tune the handlers
type Options struct {
	Identity       middleware.IdentityConfig
	TokenTTL       time.Duration
	MaxUploadBytes int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	gw       *gateway.Gateway
	accounts Accounts
	opts     Options
	logger   *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(gw *gateway.Gateway, accounts Accounts, opts Options, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	return &Handlers{gw: gw, accounts: accounts, opts: opts, logger: logger}
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "panelfs",
		"version": Version,
	})
}

// Login exchanges a username and password for a bearer token
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.accounts.GetByUsername(req.Username)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		h.rejectLogin(c, req.Username)
		return
	case err != nil:
		h.fail(c, vfserr.Wrap(vfserr.KindIOFailure, "login", "", err))
		return
	case !users.VerifyPassword(user, req.Password):
		h.rejectLogin(c, req.Username)
		return
	}

	token, err := middleware.SignToken(h.opts.Identity, user.ID, h.opts.TokenTTL)
	if err != nil {
		h.logger.Error("Failed to sign token", zap.String("username", user.Username), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "token login is not configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user.Identity(),
	})
}

func (h *Handlers) rejectLogin(c *gin.Context, username string) {
	h.logger.Info("Rejected login", zap.String("username", username), zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "invalid username or password",
	})
}

// statusFor maps a failure kind onto an HTTP status
func statusFor(err error) int {
	switch vfserr.KindOf(err) {
	case vfserr.KindUnauthorized, vfserr.KindProtected:
		return http.StatusForbidden
	case vfserr.KindInvalidPath:
		return http.StatusBadRequest
	case vfserr.KindNotFound:
		return http.StatusNotFound
	case vfserr.KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		h.logger.Error("Request failed",
			zap.String("route", c.FullPath()),
			zap.String("user", middleware.UserID(c)),
			zap.Error(err))
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"kind":    vfserr.KindOf(err),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}
