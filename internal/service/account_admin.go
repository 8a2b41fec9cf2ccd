package service

import (
	"context"
	"fmt"
	"strings"

	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

// ListUsers returns the accounts selected by status.
func (s *accountServiceImpl) ListUsers(ctx context.Context, status string) ([]models.User, error) {
	st, err := models.ParseUserStatus(status)
	if err != nil {
		return nil, err
	}
	return s.users.ListUsersByStatus(ctx, st)
}

func validateBroadcast(subject, content string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: subject and message_content are required", models.ErrInvalidInput)
	}
	return nil
}

// SendBroadcast emails every verified, active account in one job and
// returns the number of recipients.
func (s *accountServiceImpl) SendBroadcast(ctx context.Context, subject, content string) (int, error) {
	if err := validateBroadcast(subject, content); err != nil {
		return 0, err
	}
	users, err := s.users.ListUsersByStatus(ctx, models.UserStatusVerified)
	if err != nil {
		return 0, err
	}

	recipients := make([]models.Recipient, 0, len(users))
	for i := range users {
		if users[i].IsActive {
			recipients = append(recipients, models.Recipient{Name: users[i].Name, Email: users[i].Email})
		}
	}
	if len(recipients) == 0 {
		s.logger.Info("Broadcast skipped, no recipients")
		return 0, nil
	}

	s.dispatch(ctx, models.EmailJob{
		Kind:       models.EmailKindBroadcast,
		Recipients: recipients,
		Subject:    subject,
		Content:    content,
	})
	s.logger.Info("Broadcast dispatched", zap.Int("recipients", len(recipients)))
	return len(recipients), nil
}

// SendTestBroadcast sends the broadcast to a single address for preview.
func (s *accountServiceImpl) SendTestBroadcast(ctx context.Context, email, subject, content string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validateBroadcast(subject, content); err != nil {
		return err
	}
	s.dispatch(ctx, models.EmailJob{
		Kind:       models.EmailKindBroadcast,
		Recipients: []models.Recipient{{Name: "Test Recipient", Email: email}},
		Subject:    subject,
		Content:    content,
	})
	return nil
}
