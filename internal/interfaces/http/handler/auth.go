package handler

import (
	"time"

	"github.com/campusledger/backend/internal/infrastructure/auth"
	"github.com/campusledger/backend/internal/infrastructure/logger"
	"github.com/campusledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves /auth
type AuthHandler struct {
	BaseHandler
	blacklist auth.TokenBlacklist
	clock     func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{blacklist: blacklist, clock: time.Now}
}

// Revoke godoc
// @ID           revokeToken
// @Summary      Revoke the current access token
// @Description  Blacklists the bearer token until it would have expired
// @Tags         auth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/revoke [post]
func (h *AuthHandler) Revoke(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if claims.ID == "" {
		h.BadRequest(c, "Token carries no identifier and cannot be revoked")
		return
	}

	ttl := claims.RemainingTTL(h.clock())
	if ttl > 0 {
		if err := h.blacklist.AddToBlacklist(c.Request.Context(), claims.ID, ttl); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	logger.L(c.Request.Context()).Info("Access token revoked", zap.Duration("ttl", ttl))
	h.NoContent(c)
}
