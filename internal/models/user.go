package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"` // never serialized
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	Verification  SingleUseToken `db:"-" json:"-"`
	PasswordReset SingleUseToken `db:"-" json:"-"`
}

// Token returns the outstanding single-use token of the given kind.
func (u *User) Token(kind TokenKind) SingleUseToken {
	if kind == TokenKindPasswordReset {
		return u.PasswordReset
	}
	return u.Verification
}

// UserStatus selects a subset of users for admin listing.
type UserStatus string

const (
	UserStatusAll        UserStatus = "all"
	UserStatusVerified   UserStatus = "verified"
	UserStatusUnverified UserStatus = "unverified"
	UserStatusActive     UserStatus = "active"
	UserStatusInactive   UserStatus = "inactive"
)

// ParseUserStatus validates a status path parameter.
func ParseUserStatus(s string) (UserStatus, error) {
	switch st := UserStatus(s); st {
	case UserStatusAll, UserStatusVerified, UserStatusUnverified, UserStatusActive, UserStatusInactive:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Matches reports whether the user belongs to the status subset.
// Each status is exactly one predicate over the account flags.
func (s UserStatus) Matches(u *User) bool {
	switch s {
	case UserStatusAll:
		return true
	case UserStatusVerified:
		return u.IsVerified
	case UserStatusUnverified:
		return !u.IsVerified
	case UserStatusActive:
		return u.IsActive
	case UserStatusInactive:
		return !u.IsActive
	}
	return false
}
