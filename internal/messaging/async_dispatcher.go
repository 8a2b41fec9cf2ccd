package messaging

import (
	"context"
	"fmt"
	"sync"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

// AsyncDispatcher delivers each job on its own goroutine, without a broker.
type AsyncDispatcher struct {
	processor *Processor
	logger    *zap.Logger
	wg        sync.WaitGroup
}

var _ interfaces.EmailDispatcher = (*AsyncDispatcher)(nil)

func NewAsyncDispatcher(processor *Processor, logger *zap.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{processor: processor, logger: logger.Named("AsyncDispatcher")}
}

// Dispatch returns immediately. Delivery outlives ctx cancellation.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, job models.EmailJob) error {
	emailJobsDispatched.WithLabelValues("inline", "ok").Inc()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Panic while delivering email job",
					zap.String("jobID", job.ID),
					zap.String("panic", fmt.Sprint(r)))
			}
		}()
		_ = d.processor.Handle(context.WithoutCancel(ctx), job)
	}()
	return nil
}

// Wait blocks until all in-flight deliveries finish or ctx ends.
func (d *AsyncDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
