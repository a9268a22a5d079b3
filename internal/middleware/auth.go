package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	pkgjwt "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/jwt"
)

const (
	ContextUserID   = "user_id"
	ContextNickname = "nickname"
	ContextLevel    = "level"
)

// JWTAuth validates the Bearer token and stores the staff identity in
// the request context
func JWTAuth(manager *pkgjwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.ErrorResponse(c, 401, "authorization header required", nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			common.ErrorResponse(c, 401, "invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := manager.VerifyToken(parts[1])
		if err != nil {
			common.ErrorResponse(c, 401, "invalid or expired token", err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextNickname, claims.Nickname)
		c.Set(ContextLevel, claims.Level)
		c.Next()
	}
}

// OptionalJWT populates the staff identity when a valid token is
// present and lets anonymous requests through untouched
func OptionalJWT(manager *pkgjwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if claims, err := manager.VerifyToken(parts[1]); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextNickname, claims.Nickname)
				c.Set(ContextLevel, claims.Level)
			}
		}
		c.Next()
	}
}

// RequireAdmin gates destructive endpoints behind the admin level.
// Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserLevel(c) < pkgjwt.AdminLevel {
			common.ErrorResponse(c, 403, "administrator privilege required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, empty when anonymous
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetUserLevel returns the authenticated user's level, 0 when anonymous
func GetUserLevel(c *gin.Context) int {
	if v, ok := c.Get(ContextLevel); ok {
		if level, ok := v.(int); ok {
			return level
		}
	}
	return 0
}
