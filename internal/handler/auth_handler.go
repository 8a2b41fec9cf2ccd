package handler

import (
	"bitva-auth/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts service.AccountService
	logger   *zap.Logger
}

func NewAuthHandler(accounts service.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.Named("AuthHandler"),
	}
}

// RegisterRoutes mounts the API. rateLimit guards the credential endpoints
// and may be nil.
func (h *AuthHandler) RegisterRoutes(router *gin.Engine, rateLimit gin.HandlerFunc) {
	limited := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		if rateLimit == nil {
			return []gin.HandlerFunc{hf}
		}
		return []gin.HandlerFunc{rateLimit, hf}
	}

	api := router.Group("/api")
	{
		api.POST("/register", limited(h.register)...)
		api.POST("/login", limited(h.login)...)
		api.POST("/forgot_password", limited(h.forgotPassword)...)
		api.POST("/resend_verification", limited(h.resendVerification)...)
		api.POST("/reset_password", limited(h.resetPassword)...)
		api.GET("/verify_email", h.verifyEmail)
	}

	protected := api.Group("")
	protected.Use(h.AuthMiddleware())
	{
		protected.POST("/logout", h.logout)
		protected.GET("/me", h.getMe)
		protected.POST("/update_profile", h.updateProfile)
	}

	admin := api.Group("/admin")
	{
		admin.POST("/login", limited(h.adminLogin)...)
	}
	adminProtected := admin.Group("")
	adminProtected.Use(h.AuthMiddleware(), h.RequireAdmin())
	{
		adminProtected.GET("/users/:status", h.listUsers)
		adminProtected.POST("/send_broadcast", h.sendBroadcast)
		adminProtected.POST("/send_test_broadcast", h.sendTestBroadcast)
	}
}
