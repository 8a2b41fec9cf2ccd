package mocks

import (
	"context"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var (
	_ interfaces.UserRepository = (*UserRepository)(nil)
	_ interfaces.UserTx         = (*UserTx)(nil)
)

// UserRepository is a mock of interfaces.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) ListUsersByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) SetAdmin(ctx context.Context, email string, isAdmin, verify bool) (*models.User, error) {
	args := m.Called(ctx, email, isAdmin, verify)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) SetSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind, token models.SingleUseToken) error {
	args := m.Called(ctx, userID, kind, token)
	return args.Error(0)
}

// WithTx calls fn with the UserTx passed to Return. A second return value,
// if given, is an error returned instead of running fn.
func (m *UserRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.UserTx) error) error {
	args := m.Called(ctx, fn)
	if len(args) > 1 && args.Error(1) != nil {
		return args.Error(1)
	}
	return fn(ctx, args.Get(0).(interfaces.UserTx))
}

// UserTx is a mock of interfaces.UserTx.
type UserTx struct {
	mock.Mock
}

func (m *UserTx) LockUserBySingleUseToken(ctx context.Context, kind models.TokenKind, hash string) (*models.User, error) {
	args := m.Called(ctx, kind, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserTx) ClearSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind) error {
	args := m.Called(ctx, userID, kind)
	return args.Error(0)
}

func (m *UserTx) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserTx) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}
