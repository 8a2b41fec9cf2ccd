package handler

import (
	"errors"
	"net/http"

	"bitva-auth/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	c.JSON(http.StatusOK, registerResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Msg:   msgRegistered,
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	loginsTotal.WithLabelValues("user", statusLabel(err)).Inc()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) logout(c *gin.Context) {
	token := c.GetString(ctxTokenKey)
	if err := h.accounts.Logout(c.Request.Context(), token); err != nil {
		handleSessionError(c, err)
		return
	}
	logoutsTotal.Inc()
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgLoggedOut})
}

// forgotPassword answers identically whether or not the account exists.
// Lookup and dispatch failures are logged and hidden from the caller.
func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Forgot password processing failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgForgotPassword})
}

func (h *AuthHandler) resendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.accounts.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Resend verification failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgResendVerify})
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}

	err := h.accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	singleUseRedemptionsTotal.WithLabelValues(string(models.TokenKindPasswordReset), statusLabel(err)).Inc()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgPasswordReset})
}

func (h *AuthHandler) verifyEmail(c *gin.Context) {
	_, err := h.accounts.VerifyEmail(c.Request.Context(), c.Query("token"))
	if errors.Is(err, models.ErrAlreadyVerified) {
		singleUseRedemptionsTotal.WithLabelValues(string(models.TokenKindVerification), "success").Inc()
		c.JSON(http.StatusOK, models.MessageResponse{Msg: msgAlreadyVerified})
		return
	}
	singleUseRedemptionsTotal.WithLabelValues(string(models.TokenKindVerification), statusLabel(err)).Inc()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Msg: msgEmailVerified})
}
