package interfaces

import (
	"context"

	"bitva-auth/internal/models"

	"github.com/google/uuid"
)

// UserRepository defines user persistence (PostgreSQL).
type UserRepository interface {
	// CreateUser inserts a new user and fills in ID and timestamps.
	// Returns models.ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns models.ErrUserNotFound if no user has exactly this email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns models.ErrUserNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// ListUsersByStatus returns users matching the status predicate, oldest first.
	ListUsersByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error)

	// UpdateName changes the display name.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error)

	// SetAdmin toggles the admin flag; verify also marks the account verified.
	SetAdmin(ctx context.Context, email string, isAdmin, verify bool) (*models.User, error)

	// SetSingleUseToken stores (hash, expiry) for the kind, replacing any
	// outstanding token of that kind.
	SetSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind, token models.SingleUseToken) error

	// WithTx runs fn inside one transaction. fn receives a repository bound to the transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx UserTx) error) error
}

// UserTx is the set of row operations available inside a transaction.
type UserTx interface {
	// LockUserBySingleUseToken selects and row-locks the user holding the
	// token digest. Returns models.ErrTokenNotFound if no row matches.
	LockUserBySingleUseToken(ctx context.Context, kind models.TokenKind, hash string) (*models.User, error)

	// ClearSingleUseToken nulls hash and expiry of the kind together.
	ClearSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind) error

	MarkVerified(ctx context.Context, userID uuid.UUID) error

	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error
}
