package handler

import (
	"strings"

	"bitva-auth/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserKey  = "user"
	ctxTokenKey = "access_token"
)

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware requires a valid, unrevoked Bearer token of an active user.
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			handleSessionError(c, models.ErrUnauthorized)
			return
		}

		user, err := h.accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			tokenVerificationsTotal.WithLabelValues("access", "failure").Inc()
			h.logger.Debug("Access token rejected", zap.Error(err))
			handleSessionError(c, err)
			return
		}

		tokenVerificationsTotal.WithLabelValues("access", "success").Inc()
		c.Set(ctxUserKey, user)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func (h *AuthHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			handleSessionError(c, models.ErrUnauthorized)
			return
		}
		if !user.IsAdmin {
			h.logger.Warn("Admin route requested by non-admin", zap.String("userID", user.ID.String()))
			handleServiceError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
