package messaging

import (
	"context"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConnectRabbitMQ dials url until it succeeds, maxRetries is reached or ctx ends.
func ConnectRabbitMQ(ctx context.Context, rawURL string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	logger.Info("Attempting to connect to RabbitMQ",
		zap.String("url", MaskURL(rawURL)),
		zap.Int("max_retries", maxRetries),
		zap.Duration("retry_delay", retryDelay),
	)

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(rawURL)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ", zap.Int("attempt", attempt))
			go logConnectionClose(conn, logger)
			return conn, nil
		}
		logger.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func logConnectionClose(conn *amqp.Connection, logger *zap.Logger) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	if err := <-notifyClose; err != nil {
		logger.Error("RabbitMQ connection closed unexpectedly", zap.Error(err))
		return
	}
	logger.Info("RabbitMQ connection closed")
}

// MaskURL hides the password of an AMQP URL for logging.
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
