package mailer

import (
	"context"

	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

// Service renders email jobs and hands them to a Sender.
type Service struct {
	renderer *Renderer
	sender   Sender
	logger   *zap.Logger
}

func NewService(renderer *Renderer, sender Sender, logger *zap.Logger) *Service {
	return &Service{renderer: renderer, sender: sender, logger: logger.Named("Mailer")}
}

// SendJob renders the job and sends every message in one call.
func (s *Service) SendJob(ctx context.Context, job models.EmailJob) error {
	msgs, err := s.renderer.Render(job)
	if err != nil {
		return err
	}
	s.logger.Debug("Sending email job", zap.String("jobID", job.ID), zap.Int("messages", len(msgs)))
	return s.sender.Send(ctx, msgs)
}
