package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultEmailQueue is the durable queue that carries email jobs.
const DefaultEmailQueue = "email_jobs"

var ErrPublisherClosed = errors.New("email publisher is closed")

// RabbitMQEmailPublisher puts email jobs on a durable queue.
type RabbitMQEmailPublisher struct {
	mu     sync.Mutex
	ch     *amqp.Channel
	queue  string
	logger *zap.Logger
}

var _ interfaces.EmailDispatcher = (*RabbitMQEmailPublisher)(nil)

// NewRabbitMQEmailPublisher opens a channel on conn and declares the queue.
func NewRabbitMQEmailPublisher(conn *amqp.Connection, queue string, logger *zap.Logger) (*RabbitMQEmailPublisher, error) {
	if conn == nil {
		return nil, errors.New("rabbitmq connection is nil")
	}
	if queue == "" {
		queue = DefaultEmailQueue
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := declareEmailQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	logger = logger.Named("EmailPublisher")
	logger.Info("Email queue declared", zap.String("queue", queue))
	return &RabbitMQEmailPublisher{ch: ch, queue: queue, logger: logger}, nil
}

func declareEmailQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", queue, err)
	}
	return nil
}

// deliveryMode keeps jobs that carry a single-use token link off the broker's disk.
func deliveryMode(job models.EmailJob) uint8 {
	if job.Link != "" {
		return amqp.Transient
	}
	return amqp.Persistent
}

// Dispatch publishes the job as a JSON message. Broadcasts are persistent,
// token-bearing jobs are transient.
func (p *RabbitMQEmailPublisher) Dispatch(ctx context.Context, job models.EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return ErrPublisherClosed
	}
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: deliveryMode(job),
			MessageId:    job.ID,
			Timestamp:    time.Now(),
			Type:         string(job.Kind),
			Body:         body,
		},
	)
	if err != nil {
		emailJobsDispatched.WithLabelValues("rabbitmq", "error").Inc()
		return fmt.Errorf("failed to publish email job: %w", err)
	}
	emailJobsDispatched.WithLabelValues("rabbitmq", "ok").Inc()
	p.logger.Debug("Email job published",
		zap.String("jobID", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.Int("recipients", len(job.Recipients)),
	)
	return nil
}

// Close closes the publisher channel. Further Dispatch calls fail.
func (p *RabbitMQEmailPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}
