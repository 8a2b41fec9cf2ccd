package mocks

import (
	"context"

	"bitva-auth/internal/models"
	"bitva-auth/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var _ service.AccountService = (*AccountService)(nil)

// AccountService is a mock of service.AccountService.
type AccountService struct {
	mock.Mock
}

func userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func loginResult(args mock.Arguments) (*models.LoginResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResult), args.Error(1)
}

func (m *AccountService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	return userResult(m.Called(ctx, email, name, password))
}

func (m *AccountService) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *AccountService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	return loginResult(m.Called(ctx, email, password))
}

func (m *AccountService) AdminLogin(ctx context.Context, email, password string) (*models.LoginResult, error) {
	return loginResult(m.Called(ctx, email, password))
}

func (m *AccountService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *AccountService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return userResult(m.Called(ctx, token))
}

func (m *AccountService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	return userResult(m.Called(ctx, token))
}

func (m *AccountService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	return userResult(m.Called(ctx, userID, name))
}

func (m *AccountService) ListUsers(ctx context.Context, status string) ([]models.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *AccountService) SendBroadcast(ctx context.Context, subject, content string) (int, error) {
	args := m.Called(ctx, subject, content)
	return args.Int(0), args.Error(1)
}

func (m *AccountService) SendTestBroadcast(ctx context.Context, email, subject, content string) error {
	return m.Called(ctx, email, subject, content).Error(0)
}
