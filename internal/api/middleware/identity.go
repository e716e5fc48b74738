package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/tracing"
)

const (
	// UserIDKey is the gin context key holding the authenticated user id
	UserIDKey = tracing.UserKey

	// HeaderUserID carries the user id from a trusted front proxy
	HeaderUserID = "X-User-ID"

	// tokenQueryParam lets <img> and download links authenticate without headers
	tokenQueryParam = "access_token"
)

// ErrNoSecret is returned when signing without a configured secret
var ErrNoSecret = errors.New("jwt secret is not configured")

// IdentityConfig selects how callers prove who they are.
type IdentityConfig struct {
	// Secret verifies HS256 bearer tokens; empty disables token auth
	Secret string
	// Issuer, when set, must match the token's iss claim
	Issuer string
	// TrustHeader accepts X-User-ID as is. Only enable behind an authenticating proxy.
	TrustHeader bool
}

// Identity resolves the caller's user id into the context or aborts with 401.
// The id is not checked against the user store here; the gateway reloads it per call.
func Identity(cfg IdentityConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Secret == "" && !cfg.TrustHeader {
		logger.Warn("No identity source configured; every API request will be rejected")
	}

	secret := []byte(cfg.Secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		if raw := bearerToken(c); raw != "" && len(secret) > 0 {
			claims := &jwt.RegisteredClaims{}
			_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || claims.Subject == "" {
				logger.Debug("Rejected bearer token", zap.Error(err))
				unauthenticated(c, "invalid token")
				return
			}
			c.Set(UserIDKey, claims.Subject)
			c.Next()
			return
		}

		if cfg.TrustHeader {
			if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
				c.Set(UserIDKey, userID)
				c.Next()
				return
			}
		}

		unauthenticated(c, "authentication required")
	}
}

// UserID returns the authenticated user id set by Identity
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// SignToken issues an HS256 token whose subject is userID
func SignToken(cfg IdentityConfig, userID string, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		Issuer:   cfg.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return c.Query(tokenQueryParam)
}

func unauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   msg,
	})
}
