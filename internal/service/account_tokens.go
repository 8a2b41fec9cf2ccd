package service

import (
	"context"
	"errors"
	"strings"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

// VerifyEmail redeems a verification token. For an account that is already
// verified the token is still consumed and models.ErrAlreadyVerified is returned.
func (s *accountServiceImpl) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	alreadyVerified := false
	user, err := s.tokens.Redeem(ctx, models.TokenKindVerification, token,
		func(ctx context.Context, tx interfaces.UserTx, user *models.User) error {
			if user.IsVerified {
				alreadyVerified = true
				return nil
			}
			return tx.MarkVerified(ctx, user.ID)
		})
	if err != nil {
		return nil, err
	}
	if alreadyVerified {
		return user, models.ErrAlreadyVerified
	}
	user.IsVerified = true
	s.logger.Info("Email verified", zap.String("userID", user.ID.String()))
	return user, nil
}

// ForgotPassword sends a reset email when the account exists. The caller
// gets the same result either way.
func (s *accountServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rawToken, err := s.tokens.Issue(ctx, models.TokenKindPasswordReset, user.ID)
	if err != nil {
		return err
	}
	s.sendPasswordResetEmail(ctx, user, rawToken)
	return nil
}

// ResetPassword redeems a reset token and installs the new password in the same transaction.
func (s *accountServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := s.creds.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user, err := s.tokens.Redeem(ctx, models.TokenKindPasswordReset, token,
		func(ctx context.Context, tx interfaces.UserTx, user *models.User) error {
			return tx.UpdatePasswordHash(ctx, user.ID, passwordHash)
		})
	if err != nil {
		return err
	}
	s.logger.Info("Password reset", zap.String("userID", user.ID.String()))
	return nil
}
