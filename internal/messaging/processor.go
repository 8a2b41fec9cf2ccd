package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitva-auth/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultJobTimeout bounds the delivery of one job.
const DefaultJobTimeout = 30 * time.Second

// ErrInvalidJob marks jobs that can never be delivered.
var ErrInvalidJob = errors.New("invalid email job")

// JobSender delivers one email job. Declared here to keep the mailer
// package free of queue concerns.
type JobSender interface {
	SendJob(ctx context.Context, job models.EmailJob) error
}

// Processor turns queued deliveries into JobSender calls.
type Processor struct {
	logger  *zap.Logger
	sender  JobSender
	timeout time.Duration
}

func NewProcessor(logger *zap.Logger, sender JobSender) *Processor {
	return &Processor{
		logger:  logger.Named("EmailProcessor"),
		sender:  sender,
		timeout: DefaultJobTimeout,
	}
}

func validateJob(job models.EmailJob) error {
	if len(job.Recipients) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidJob)
	}
	switch job.Kind {
	case models.EmailKindVerification, models.EmailKindPasswordReset:
		if job.Link == "" {
			return fmt.Errorf("%w: %s job without link", ErrInvalidJob, job.Kind)
		}
	case models.EmailKindBroadcast:
		if job.Subject == "" || job.Content == "" {
			return fmt.Errorf("%w: broadcast without subject or content", ErrInvalidJob)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidJob, job.Kind)
	}
	return nil
}

// Handle validates and delivers a job within the processor timeout.
func (p *Processor) Handle(ctx context.Context, job models.EmailJob) error {
	log := p.logger.With(zap.String("jobID", job.ID), zap.String("kind", string(job.Kind)))
	if err := validateJob(job); err != nil {
		emailJobsProcessed.WithLabelValues(string(job.Kind), "rejected").Inc()
		log.Error("Rejecting email job", zap.Error(err))
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.sender.SendJob(sendCtx, job); err != nil {
		emailJobsProcessed.WithLabelValues(string(job.Kind), "failed").Inc()
		log.Error("Email delivery failed", zap.Int("recipients", len(job.Recipients)), zap.Error(err))
		return err
	}
	emailJobsProcessed.WithLabelValues(string(job.Kind), "sent").Inc()
	log.Info("Email job delivered", zap.Int("recipients", len(job.Recipients)))
	return nil
}

// ProcessMessage decodes and handles one delivery. Failed jobs are
// Nacked without requeue: the triggering request already succeeded and the
// user can ask for a new email. A job interrupted by cancellation of ctx is
// requeued for the next consumer.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	var job models.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		emailJobsProcessed.WithLabelValues("unknown", "rejected").Inc()
		p.logger.Error("Failed to decode email job",
			zap.Error(err),
			zap.Uint64("delivery_tag", d.DeliveryTag))
		p.nack(d, false)
		return
	}

	if err := p.Handle(ctx, job); err != nil {
		if ctx.Err() != nil {
			p.logger.Warn("Email job interrupted, requeueing",
				zap.String("jobID", job.ID),
				zap.Uint64("delivery_tag", d.DeliveryTag))
			p.nack(d, true)
			return
		}
		p.nack(d, false)
		return
	}
	if err := d.Ack(false); err != nil {
		p.logger.Error("Failed to ack email job", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
	}
}

func (p *Processor) nack(d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		p.logger.Error("Failed to nack email job", zap.Error(err), zap.Uint64("delivery_tag", d.DeliveryTag))
	}
}
