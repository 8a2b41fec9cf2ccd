package handler

import (
	"net/http"

	"bitva-auth/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *AuthHandler) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	res, err := h.accounts.AdminLogin(c.Request.Context(), req.Username, req.Password)
	loginsTotal.WithLabelValues("admin", statusLabel(err)).Inc()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) listUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), c.Param("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := listUsersResponse{Users: make([]adminUserSummary, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, adminUserSummary{
			Email:      u.Email,
			Name:       u.Name,
			IsVerified: u.IsVerified,
			IsActive:   u.IsActive,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) sendBroadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	n, err := h.accounts.SendBroadcast(c.Request.Context(), req.Subject, req.MessageContent)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	h.logger.Info("Broadcast requested",
		zap.String("adminID", currentUser(c).ID.String()),
		zap.Int("recipients", n))
	c.JSON(http.StatusOK, broadcastResponse{Msg: msgBroadcastSent, Recipients: n})
}

func (h *AuthHandler) sendTestBroadcast(c *gin.Context) {
	var req testBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	if err := h.accounts.SendTestBroadcast(c.Request.Context(), req.Email, req.Subject, req.MessageContent); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgTestBroadcastSent})
}
