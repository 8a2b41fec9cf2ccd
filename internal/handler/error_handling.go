package handler

import (
	"errors"
	"net/http"

	"bitva-auth/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgCouldNotValidate = "Could not validate credentials"

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidEmail):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Detail: "Invalid email format"}
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeDuplicateEmail, Detail: "Email already registered"}
	case errors.Is(err, models.ErrInvalidStatus):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeInvalidStatus, Detail: "Invalid status parameter"}
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Detail: err.Error()}
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeWrongCredentials, Detail: "Invalid credentials"}
	case errors.Is(err, models.ErrEmailNotVerified):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeEmailNotVerified, Detail: "Email not verified"}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Code: models.ErrCodeForbidden, Detail: "Not authorized as admin"}
	case errors.Is(err, models.ErrTokenNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenNotFound, Detail: "Invalid token"}
	case errors.Is(err, models.ErrTokenExpired), errors.Is(err, models.ErrTokenInvalid):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeTokenExpired, Detail: "Invalid or expired token"}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeBadRequest, Detail: "User not found"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Detail: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

// isSessionError reports whether err means the presented session token is unusable.
func isSessionError(err error) bool {
	return errors.Is(err, models.ErrUnauthorized) ||
		errors.Is(err, models.ErrTokenMalformed) ||
		errors.Is(err, models.ErrTokenBadSignature) ||
		errors.Is(err, models.ErrTokenExpired) ||
		errors.Is(err, models.ErrTokenRevoked)
}

// handleSessionError answers session token failures with one generic 401 so
// callers cannot tell an expired token from a forged one.
func handleSessionError(c *gin.Context, err error) {
	if !isSessionError(err) {
		handleServiceError(c, err)
		return
	}
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Code:   models.ErrCodeUnauthorized,
		Detail: msgCouldNotValidate,
	})
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Code:   models.ErrCodeBadRequest,
		Detail: "Invalid request data: " + err.Error(),
	})
}
