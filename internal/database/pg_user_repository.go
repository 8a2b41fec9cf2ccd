package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time checks
var (
	_ interfaces.UserRepository = (*pgUserRepository)(nil)
	_ interfaces.UserTx         = (*pgUserTx)(nil)
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, password_hash, is_verified, is_active, is_admin,
	verification_token_hash, verification_token_expiry,
	password_reset_token_hash, password_reset_token_expiry,
	created_at, updated_at`

// TxBeginner is a DBTX that can also open a transaction (*pgxpool.Pool, pgx.Tx).
type TxBeginner interface {
	interfaces.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// userRow mirrors the users table, including the nullable token pairs.
type userRow struct {
	models.User
	VerificationTokenHash    *string    `db:"verification_token_hash"`
	VerificationTokenExpiry  *time.Time `db:"verification_token_expiry"`
	PasswordResetTokenHash   *string    `db:"password_reset_token_hash"`
	PasswordResetTokenExpiry *time.Time `db:"password_reset_token_expiry"`
}

func (r *userRow) toModel() *models.User {
	u := r.User
	u.Verification = tokenFromColumns(r.VerificationTokenHash, r.VerificationTokenExpiry)
	u.PasswordReset = tokenFromColumns(r.PasswordResetTokenHash, r.PasswordResetTokenExpiry)
	return &u
}

func tokenFromColumns(hash *string, expiry *time.Time) models.SingleUseToken {
	if hash == nil || expiry == nil {
		return models.SingleUseToken{}
	}
	return models.NewSingleUseToken(*hash, *expiry)
}

type pgUserRepository struct {
	db     TxBeginner
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db TxBeginner, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user. The verification token, when set, is stored in the same statement.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, name, password_hash, is_verified, is_active, is_admin,
		verification_token_hash, verification_token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	hash, expiry := tokenColumns(user.Verification)
	err := r.db.QueryRow(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.IsVerified, user.IsActive, user.IsAdmin, hash, expiry,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn("Attempted to create duplicate user", zap.String("constraint", pgErr.ConstraintName))
			return models.ErrEmailAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created", zap.String("userID", user.ID.String()))
	return nil
}

// GetUserByEmail matches the email exactly as stored.
func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *pgUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// ListUsersByStatus returns the users selected by status, oldest first.
func (r *pgUserRepository) ListUsersByStatus(ctx context.Context, status models.UserStatus) ([]models.User, error) {
	where, err := statusPredicate(status)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at ASC, id ASC`

	var rows []*userRow
	if err := pgxscan.Select(ctx, r.db, &rows, query); err != nil {
		r.logger.Error("Failed to list users", zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}
	return users, nil
}

func statusPredicate(status models.UserStatus) (string, error) {
	switch status {
	case models.UserStatusAll:
		return "", nil
	case models.UserStatusVerified:
		return " WHERE is_verified", nil
	case models.UserStatusUnverified:
		return " WHERE NOT is_verified", nil
	case models.UserStatusActive:
		return " WHERE is_active", nil
	case models.UserStatusInactive:
		return " WHERE NOT is_active", nil
	default:
		return "", models.ErrInvalidStatus
	}
}

func (r *pgUserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	query := `UPDATE users SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return r.getOne(ctx, r.db, query, id, name)
}

// SetAdmin sets the admin flag. With verify the account is also marked verified.
func (r *pgUserRepository) SetAdmin(ctx context.Context, email string, isAdmin, verify bool) (*models.User, error) {
	query := `UPDATE users SET is_admin = $2, is_verified = is_verified OR $3, updated_at = NOW()
		WHERE email = $1 RETURNING ` + userColumns
	return r.getOne(ctx, r.db, query, email, isAdmin, verify)
}

// SetSingleUseToken writes hash and expiry of one kind in a single statement.
func (r *pgUserRepository) SetSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind, token models.SingleUseToken) error {
	return setTokenColumns(ctx, r.db, userID, kind, token)
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func (r *pgUserRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx interfaces.UserTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				r.logger.Error("Failed to rollback transaction after panic",
					zap.Error(rollbackErr),
					zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, &pgUserTx{repo: r, tx: tx}); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			r.logger.Error("Failed to rollback transaction",
				zap.Error(rollbackErr),
				zap.NamedError("original_error", err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *pgUserRepository) getOne(ctx context.Context, db interfaces.DBTX, query string, args ...any) (*models.User, error) {
	var row userRow
	if err := pgxscan.Get(ctx, db, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to get user from postgres: %w", err)
	}
	return row.toModel(), nil
}

// pgUserTx runs row operations on an open transaction.
type pgUserTx struct {
	repo *pgUserRepository
	tx   pgx.Tx
}

// LockUserBySingleUseToken locks the row holding the digest with FOR UPDATE.
// A concurrent redeemer blocks until this transaction ends and then no longer matches.
func (t *pgUserTx) LockUserBySingleUseToken(ctx context.Context, kind models.TokenKind, hash string) (*models.User, error) {
	col, err := kind.Column()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + col + `_hash = $1 FOR UPDATE`
	user, err := t.repo.getOne(ctx, t.tx, query, hash)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrTokenNotFound
	}
	return user, err
}

func (t *pgUserTx) ClearSingleUseToken(ctx context.Context, userID uuid.UUID, kind models.TokenKind) error {
	return setTokenColumns(ctx, t.tx, userID, kind, models.SingleUseToken{})
}

func (t *pgUserTx) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	return execOne(ctx, t.tx, `UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, userID)
}

func (t *pgUserTx) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return execOne(ctx, t.tx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
}

func setTokenColumns(ctx context.Context, db interfaces.DBTX, userID uuid.UUID, kind models.TokenKind, token models.SingleUseToken) error {
	col, err := kind.Column()
	if err != nil {
		return err
	}
	hash, expiry := tokenColumns(token)
	query := `UPDATE users SET ` + col + `_hash = $2, ` + col + `_expiry = $3, updated_at = NOW() WHERE id = $1`
	return execOne(ctx, db, query, userID, hash, expiry)
}

// tokenColumns maps a token to nullable column values; an empty token is NULL, NULL.
func tokenColumns(token models.SingleUseToken) (*string, *time.Time) {
	if token.IsZero() {
		return nil, nil
	}
	hash, expiry := token.Hash, token.ExpiresAt
	return &hash, &expiry
}

func execOne(ctx context.Context, db interfaces.DBTX, query string, args ...any) error {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
