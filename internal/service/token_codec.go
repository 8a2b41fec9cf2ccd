package service

import (
	"errors"
	"fmt"
	"time"

	"bitva-auth/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTokenTTL applies when Issue is called with a non-positive ttl.
const DefaultAccessTokenTTL = 15 * time.Minute

// TokenCodec issues and verifies HS256 session tokens.
type TokenCodec struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec creates a codec. A non-positive defaultTTL uses DefaultAccessTokenTTL.
func NewTokenCodec(secret string, defaultTTL time.Duration) *TokenCodec {
	if defaultTTL <= 0 {
		defaultTTL = DefaultAccessTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), defaultTTL: defaultTTL, now: time.Now}
}

// Issue signs a token for subject that expires after ttl.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	expiresAt := now.Add(ttl)
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	// The exp claim has second precision.
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature then expiry and returns the claims.
// The signature is validated first, so a forged expired token reports ErrTokenBadSignature.
// Tokens without a subject or jti are malformed.
func (c *TokenCodec) Verify(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrTokenBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		default:
			return nil, fmt.Errorf("%w: %v", models.ErrTokenMalformed, err)
		}
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, models.ErrTokenMalformed
	}
	return claims, nil
}
