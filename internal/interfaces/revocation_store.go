package interfaces

import (
	"context"
	"time"
)

// RevocationStore keeps revoked session token IDs (jti) until the token's own expiry.
type RevocationStore interface {
	// Revoke records the token ID; adding an already revoked ID is a no-op.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether the token ID was revoked and has not expired yet.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
