package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/middleware"
	pkgjwt "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/jwt"
)

// AuthHandler exposes token introspection and refresh for staff
// sessions. Tokens are issued out of band; this API only validates
// and extends them.
type AuthHandler struct {
	tokens *pkgjwt.Manager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokens *pkgjwt.Manager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"user_id": middleware.GetUserID(c),
		"level":   middleware.GetUserLevel(c),
		"admin":   middleware.GetUserLevel(c) >= pkgjwt.AdminLevel,
	}, nil)
}

// Refresh handles POST /auth/refresh: reissues a token with a fresh
// expiry for the already-authenticated staff member
func (h *AuthHandler) Refresh(c *gin.Context) {
	nickname := ""
	if v, ok := c.Get(middleware.ContextNickname); ok {
		nickname, _ = v.(string)
	}
	token, err := h.tokens.GenerateToken(middleware.GetUserID(c), nickname, middleware.GetUserLevel(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to issue token", err)
		return
	}
	common.SuccessResponse(c, gin.H{"token": token}, nil)
}
