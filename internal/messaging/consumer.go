package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer runs a pool of workers reading email jobs from the queue.
type Consumer struct {
	conn          *amqp.Connection
	logger        *zap.Logger
	queueName     string
	concurrency   int
	prefetchCount int
	processor     *Processor
	stopChannel   chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency, prefetchCount int, processor *Processor) *Consumer {
	if queueName == "" {
		queueName = DefaultEmailQueue
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if prefetchCount < concurrency {
		prefetchCount = concurrency
	}
	return &Consumer{
		conn:          conn,
		logger:        logger.Named("EmailConsumer"),
		queueName:     queueName,
		concurrency:   concurrency,
		prefetchCount: prefetchCount,
		processor:     processor,
		stopChannel:   make(chan struct{}),
	}
}

// Start blocks until Stop is called or the delivery channel closes.
// In-flight jobs finish before it returns.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	if err := declareEmailQueue(ch, c.queueName); err != nil {
		return err
	}
	if err := ch.Qos(c.prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,
		"email-consumer", // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	c.logger.Info("Email consumer started",
		zap.String("queue", c.queueName),
		zap.Int("concurrency", c.concurrency))

	// Deliveries already taken run to completion after Stop.
	jobCtx := context.WithoutCancel(ctx)

	done := make(chan struct{})
	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			log := c.logger.With(zap.Int("worker_id", workerID))
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						log.Info("Delivery channel closed, worker exiting")
						return
					}
					c.processor.ProcessMessage(jobCtx, d)
				}
			}
		}(i)
	}
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-c.stopChannel:
		c.logger.Info("Stopping email consumer")
	case <-done:
		c.logger.Warn("All email workers exited")
	}
	cancel()
	<-done
	c.logger.Info("Email consumer stopped")
	return nil
}

// Stop signals Start to return. Safe to call more than once.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChannel) })
}
