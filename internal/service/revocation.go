package service

import (
	"context"
	"fmt"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"go.uber.org/zap"
)

// SessionGate validates session tokens against both the codec and the
// revocation registry. A token passes only if both accept it.
type SessionGate struct {
	codec  *TokenCodec
	store  interfaces.RevocationStore
	logger *zap.Logger
}

func NewSessionGate(codec *TokenCodec, store interfaces.RevocationStore, logger *zap.Logger) *SessionGate {
	return &SessionGate{codec: codec, store: store, logger: logger.Named("SessionGate")}
}

// Validate verifies the token and rejects it with models.ErrTokenRevoked after logout.
// Revocation is tracked by jti, so any encoding of the same signed claims is rejected.
func (g *SessionGate) Validate(ctx context.Context, token string) (*models.SessionClaims, error) {
	claims, err := g.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	revoked, err := g.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, models.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke registers a valid token until its own expiry. Revoking twice is a no-op.
func (g *SessionGate) Revoke(ctx context.Context, token string) error {
	claims, err := g.codec.Verify(token)
	if err != nil {
		return err
	}
	if err := g.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	g.logger.Debug("Session revoked", zap.String("jti", claims.ID), zap.Time("expiresAt", claims.ExpiresAt.Time))
	return nil
}
