package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultSingleUseTTL is how long verification and reset tokens stay redeemable.
	DefaultSingleUseTTL = 30 * time.Minute

	singleUseTokenBytes = 32
)

// RedeemFunc applies the kind-specific change inside the redemption transaction.
type RedeemFunc func(ctx context.Context, tx interfaces.UserTx, user *models.User) error

// SingleUseTokenManager issues and redeems verification and password reset tokens.
// Only the SHA-256 digest of a token is stored.
type SingleUseTokenManager struct {
	repo   interfaces.UserRepository
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
	logger *zap.Logger
}

func NewSingleUseTokenManager(repo interfaces.UserRepository, ttl time.Duration, logger *zap.Logger) *SingleUseTokenManager {
	if ttl <= 0 {
		ttl = DefaultSingleUseTTL
	}
	return &SingleUseTokenManager{
		repo:   repo,
		ttl:    ttl,
		now:    time.Now,
		random: rand.Reader,
		logger: logger.Named("SingleUseTokens"),
	}
}

// HashSingleUseToken returns the hex SHA-256 digest stored for a raw token.
func HashSingleUseToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Generate creates a new raw token and the value to persist for it.
func (m *SingleUseTokenManager) Generate() (string, models.SingleUseToken, error) {
	buf := make([]byte, singleUseTokenBytes)
	if _, err := io.ReadFull(m.random, buf); err != nil {
		return "", models.SingleUseToken{}, fmt.Errorf("failed to generate token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, models.NewSingleUseToken(HashSingleUseToken(raw), m.now().Add(m.ttl)), nil
}

// Issue stores a fresh token of kind for the user, replacing any outstanding
// one, and returns the raw token for out-of-band delivery.
func (m *SingleUseTokenManager) Issue(ctx context.Context, kind models.TokenKind, userID uuid.UUID) (string, error) {
	raw, token, err := m.Generate()
	if err != nil {
		return "", err
	}
	if err := m.repo.SetSingleUseToken(ctx, userID, kind, token); err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", kind, err)
	}
	m.logger.Debug("Single-use token issued",
		zap.String("kind", string(kind)),
		zap.String("userID", userID.String()),
		zap.Time("expiresAt", token.ExpiresAt),
	)
	return raw, nil
}

// Redeem accepts the raw token once. In one transaction it locks the owning
// row, checks expiry, clears the token and runs apply. Verification tokens of
// already verified accounts skip the expiry check.
// Errors: models.ErrTokenNotFound, models.ErrTokenExpired, models.ErrTokenInvalid.
func (m *SingleUseTokenManager) Redeem(ctx context.Context, kind models.TokenKind, raw string, apply RedeemFunc) (*models.User, error) {
	if raw == "" {
		return nil, models.ErrTokenNotFound
	}
	presented := HashSingleUseToken(raw)

	var redeemed *models.User
	err := m.repo.WithTx(ctx, func(ctx context.Context, tx interfaces.UserTx) error {
		user, err := tx.LockUserBySingleUseToken(ctx, kind, presented)
		if err != nil {
			return err
		}
		stored := user.Token(kind)
		if subtle.ConstantTimeCompare([]byte(stored.Hash), []byte(presented)) != 1 {
			return models.ErrTokenInvalid
		}
		// A verified account may still consume a stale verification token.
		settled := kind == models.TokenKindVerification && user.IsVerified
		if stored.ExpiredAt(m.now()) && !settled {
			return models.ErrTokenExpired
		}
		if err := tx.ClearSingleUseToken(ctx, user.ID, kind); err != nil {
			return fmt.Errorf("failed to clear %s token: %w", kind, err)
		}
		if apply != nil {
			if err := apply(ctx, tx, user); err != nil {
				return err
			}
		}
		redeemed = user
		return nil
	})
	if err != nil {
		m.logger.Debug("Single-use token rejected", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	m.logger.Info("Single-use token redeemed",
		zap.String("kind", string(kind)),
		zap.String("userID", redeemed.ID.String()),
	)
	return redeemed, nil
}
