package models

import (
	"fmt"
	"time"
)

// TokenKind identifies a single-use token family stored on the user row.
type TokenKind string

const (
	TokenKindVerification  TokenKind = "verification"
	TokenKindPasswordReset TokenKind = "password_reset"
)

// Column returns the user table column prefix for the kind.
func (k TokenKind) Column() (string, error) {
	switch k {
	case TokenKindVerification:
		return "verification_token", nil
	case TokenKindPasswordReset:
		return "password_reset_token", nil
	default:
		return "", fmt.Errorf("unknown token kind %q", string(k))
	}
}

// SingleUseToken is the persisted half of a single-use token: the digest of
// the raw secret and its expiry. Both are set or both are empty.
type SingleUseToken struct {
	Hash      string
	ExpiresAt time.Time
}

// NewSingleUseToken pairs a digest with its expiry.
func NewSingleUseToken(hash string, expiresAt time.Time) SingleUseToken {
	return SingleUseToken{Hash: hash, ExpiresAt: expiresAt}
}

// IsZero reports whether no token is outstanding.
func (t SingleUseToken) IsZero() bool {
	return t.Hash == "" && t.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the token is no longer acceptable at now.
// A token presented exactly at its expiry is expired.
func (t SingleUseToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.IsZero() || !now.Before(t.ExpiresAt)
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}
