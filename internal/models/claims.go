package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims of a session token. Subject carries the
// account email, ID a random jti.
type SessionClaims struct {
	jwt.RegisteredClaims
}
