package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/revocation"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// AuthHandler exposes the caller's identity and token logout.
type AuthHandler struct {
	revoked *revocation.List
}

func NewAuthHandler(revoked *revocation.List) *AuthHandler {
	return &AuthHandler{revoked: revoked}
}

// Register routes under /auth. Logout is only available with a revocation store.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.GET("/me", h.Me)
	if h.revoked.Enabled() {
		a.POST("/logout", h.Logout)
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, _ := c.Get(middleware.ClaimsKey)
	c.JSON(http.StatusOK, gin.H{"userId": middleware.UserID(c), "claims": claims})
}

// Logout revokes the presented access token for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	ttl := time.Hour
	if claims, ok := c.Get(middleware.ClaimsKey); ok {
		if cm, ok := claims.(map[string]interface{}); ok {
			if exp, ok := cm["exp"].(float64); ok {
				ttl = time.Until(time.Unix(int64(exp), 0))
			}
		}
	}
	if err := h.revoked.Revoke(c.Request.Context(), token, ttl); err != nil {
		logger.Errorw("failed to revoke token", "userId", middleware.UserID(c), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
