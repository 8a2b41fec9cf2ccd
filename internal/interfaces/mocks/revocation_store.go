package mocks

import (
	"context"
	"time"

	"bitva-auth/internal/interfaces"

	"github.com/stretchr/testify/mock"
)

var _ interfaces.RevocationStore = (*RevocationStore)(nil)

// RevocationStore is a mock of interfaces.RevocationStore.
type RevocationStore struct {
	mock.Mock
}

func (m *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Error(0)
}

func (m *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
