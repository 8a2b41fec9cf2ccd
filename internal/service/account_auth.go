package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitva-auth/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Register creates an unverified account and sends the verification email.
func (s *accountServiceImpl) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		s.logger.Info("Registration attempt for existing email")
		return nil, models.ErrEmailAlreadyExists
	}

	passwordHash, err := s.creds.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	rawToken, verification, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
		Verification: verification,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("userID", user.ID.String()))

	s.sendVerificationEmail(ctx, user, rawToken)
	return user, nil
}

// ResendVerification issues a new verification token for an unverified
// account. Unknown and already verified emails are silently ignored.
func (s *accountServiceImpl) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if user.IsVerified || !user.IsActive {
		return nil
	}

	rawToken, err := s.tokens.Issue(ctx, models.TokenKindVerification, user.ID)
	if err != nil {
		return err
	}
	s.sendVerificationEmail(ctx, user, rawToken)
	return nil
}

// checkCredentials resolves an active, verified account from email and password.
func (s *accountServiceImpl) checkCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.creds.CheckPassword(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, models.ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (s *accountServiceImpl) issueSession(user *models.User) (*models.LoginResult, error) {
	token, expiresAt, err := s.codec.Issue(user.Email, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// Login requires a verified account.
func (s *accountServiceImpl) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in", zap.String("userID", user.ID.String()))
	return s.issueSession(user)
}

// AdminLogin additionally requires the admin flag.
func (s *accountServiceImpl) AdminLogin(ctx context.Context, email, password string) (*models.LoginResult, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		s.logger.Warn("Admin login attempt by non-admin", zap.String("userID", user.ID.String()))
		return nil, models.ErrForbidden
	}
	s.logger.Info("Admin logged in", zap.String("userID", user.ID.String()))
	return s.issueSession(user)
}

// Logout revokes the presented token until it expires.
func (s *accountServiceImpl) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves the account behind a session token.
func (s *accountServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, claims.Subject)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}

// UpdateProfile changes the display name.
func (s *accountServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	return s.users.UpdateName(ctx, userID, name)
}
