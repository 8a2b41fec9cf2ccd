package database

import (
	"context"
	"sync"
	"time"

	"bitva-auth/internal/interfaces"

	"go.uber.org/zap"
)

var _ interfaces.RevocationStore = (*MemoryRevocationStore)(nil)

// MemoryRevocationStore is a process-local revocation registry. Entries are
// dropped once the token's own expiry has passed, either lazily on lookup or by Run.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	logger  *zap.Logger
	now     func() time.Time
}

func NewMemoryRevocationStore(logger *zap.Logger) *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]time.Time),
		logger:  logger.Named("MemoryRevocationStore"),
		now:     time.Now,
	}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if !s.now().Before(expiresAt) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[tokenID]; !ok {
		s.entries[tokenID] = expiresAt
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.entries[tokenID]
	s.mu.RUnlock()

	return ok && s.now().Before(expiresAt), nil
}

// Sweep removes entries whose token has expired and returns how many were removed.
func (s *MemoryRevocationStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Run sweeps every interval until ctx is cancelled.
func (s *MemoryRevocationStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Revocation sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Revocation sweeper stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("Swept expired revocations", zap.Int("removed", n))
			}
		}
	}
}
