package handler

import (
	"bitva-auth/internal/models"

	"github.com/google/uuid"
)

const (
	msgRegistered        = "User registered successfully"
	msgLoggedOut         = "User logged out successfully"
	msgEmailVerified     = "Email verified successfully"
	msgAlreadyVerified   = "Email already verified"
	msgPasswordReset     = "Password reset successfully"
	msgForgotPassword    = "If the account exists, a password reset email will be sent."
	msgResendVerify      = "If the account exists and is not verified, a verification email will be sent."
	msgBroadcastSent     = "Broadcast sent"
	msgTestBroadcastSent = "Test broadcast sent"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// loginRequest accepts OAuth2 password-form fields; username carries the email.
type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type updateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type broadcastRequest struct {
	Subject        string `json:"subject" binding:"required"`
	MessageContent string `json:"message_content" binding:"required"`
}

type testBroadcastRequest struct {
	Email          string `json:"email" binding:"required"`
	Subject        string `json:"subject" binding:"required"`
	MessageContent string `json:"message_content" binding:"required"`
}

type registerResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Msg   string    `json:"msg"`
}

type meResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"is_verified"`
	IsAdmin    bool      `json:"is_admin"`
}

func newMeResponse(u *models.User) meResponse {
	return meResponse{ID: u.ID, Email: u.Email, Name: u.Name, IsVerified: u.IsVerified, IsAdmin: u.IsAdmin}
}

type adminUserSummary struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsVerified bool   `json:"is_verified"`
	IsActive   bool   `json:"is_active"`
}

type listUsersResponse struct {
	Users []adminUserSummary `json:"users"`
}

type broadcastResponse struct {
	Msg        string `json:"msg"`
	Recipients int    `json:"recipients"`
}
