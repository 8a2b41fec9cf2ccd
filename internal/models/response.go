package models

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}

// MessageResponse is the JSON body of calls that only report an outcome.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// Error codes
const (
	ErrCodeBadRequest       = 40000
	ErrCodeValidation       = 40001
	ErrCodeDuplicateEmail   = 40002
	ErrCodeWrongCredentials = 40003
	ErrCodeEmailNotVerified = 40004
	ErrCodeTokenExpired     = 40005
	ErrCodeInvalidStatus    = 40006
	ErrCodeUnauthorized     = 40100
	ErrCodeForbidden        = 40300
	ErrCodeTokenNotFound    = 40400
	ErrCodeTooManyRequests  = 42900
	ErrCodeInternal         = 50000
)
