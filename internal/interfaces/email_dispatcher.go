package interfaces

import (
	"context"

	"bitva-auth/internal/models"
)

// EmailDispatcher hands an email job off for delivery. The caller does not
// wait for delivery; errors are only about handing the job off.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, job models.EmailJob) error
}
