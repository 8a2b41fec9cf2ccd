package models

import "errors"

// Application-wide standard errors
var (
	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Session token errors (Token Codec)
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenBadSignature = errors.New("token signature is invalid")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenRevoked      = errors.New("token has been revoked")

	// Single-use token errors
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenInvalid  = errors.New("token is invalid")

	// General Request/Server Errors
	ErrInvalidInput  = errors.New("invalid input data")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidStatus = errors.New("invalid status parameter")
	ErrInternal      = errors.New("internal server error")
)
