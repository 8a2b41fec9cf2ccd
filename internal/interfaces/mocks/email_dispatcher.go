package mocks

import (
	"context"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/stretchr/testify/mock"
)

var _ interfaces.EmailDispatcher = (*EmailDispatcher)(nil)

// EmailDispatcher is a mock of interfaces.EmailDispatcher.
type EmailDispatcher struct {
	mock.Mock
}

func (m *EmailDispatcher) Dispatch(ctx context.Context, job models.EmailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
