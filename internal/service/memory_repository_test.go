package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/google/uuid"
)

// memUserRepo is an in-memory UserRepository for scenario tests. WithTx
// serializes transactions and restores the previous state when fn fails.
type memUserRepo struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

var (
	_ interfaces.UserRepository = (*memUserRepo)(nil)
	_ interfaces.UserTx         = (*memUserTx)(nil)
)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrEmailAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (r *memUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ListUsersByStatus(_ context.Context, status models.UserStatus) ([]models.User, error) {
	if _, err := models.ParseUserStatus(string(status)); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0)
	for _, u := range r.users {
		if status.Matches(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) update(id uuid.UUID, fn func(u *models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) UpdateName(_ context.Context, id uuid.UUID, name string) (*models.User, error) {
	return r.update(id, func(u *models.User) { u.Name = name })
}

func (r *memUserRepo) SetAdmin(ctx context.Context, email string, isAdmin, verify bool) (*models.User, error) {
	u, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.update(u.ID, func(u *models.User) {
		u.IsAdmin = isAdmin
		u.IsVerified = u.IsVerified || verify
	})
}

func (r *memUserRepo) SetSingleUseToken(_ context.Context, userID uuid.UUID, kind models.TokenKind, token models.SingleUseToken) error {
	_, err := r.update(userID, func(u *models.User) {
		if kind == models.TokenKindPasswordReset {
			u.PasswordReset = token
		} else {
			u.Verification = token
		}
	})
	return err
}

func (r *memUserRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.UserTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	snapshot := make(map[uuid.UUID]models.User, len(r.users))
	for id, u := range r.users {
		snapshot[id] = *u
	}
	r.mu.Unlock()

	if err := fn(ctx, &memUserTx{repo: r}); err != nil {
		r.mu.Lock()
		for id, u := range snapshot {
			cp := u
			r.users[id] = &cp
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

// forceExpiry rewrites the stored expiry of a token kind.
func (r *memUserRepo) forceExpiry(userID uuid.UUID, kind models.TokenKind, at time.Time) {
	_, _ = r.update(userID, func(u *models.User) {
		if kind == models.TokenKindPasswordReset {
			u.PasswordReset.ExpiresAt = at
		} else {
			u.Verification.ExpiresAt = at
		}
	})
}

type memUserTx struct {
	repo *memUserRepo
}

func (t *memUserTx) LockUserBySingleUseToken(_ context.Context, kind models.TokenKind, hash string) (*models.User, error) {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for _, u := range t.repo.users {
		if tok := u.Token(kind); !tok.IsZero() && tok.Hash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrTokenNotFound
}

func (t *memUserTx) ClearSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind) error {
	return t.repo.SetSingleUseToken(ctx, userID, kind, models.SingleUseToken{})
}

func (t *memUserTx) MarkVerified(_ context.Context, userID uuid.UUID) error {
	_, err := t.repo.update(userID, func(u *models.User) { u.IsVerified = true })
	return err
}

func (t *memUserTx) UpdatePasswordHash(_ context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := t.repo.update(userID, func(u *models.User) { u.PasswordHash = passwordHash })
	return err
}
