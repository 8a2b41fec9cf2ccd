package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bitva-auth/internal/interfaces"
	"bitva-auth/internal/models"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type DatabaseIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	userRepo    interfaces.UserRepository
	revocations interfaces.RevocationStore
	logger      *zap.Logger
}

func (s *DatabaseIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	s.Require().NoError(err, "Failed to start postgres container")

	pgConnStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.pgPool, err = pgxpool.New(s.ctx, pgConnStr)
	s.Require().NoError(err)
	s.Require().NoError(NewMigrator(s.pgPool, s.logger).Up())

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	s.Require().NoError(err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	s.Require().NoError(err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	s.Require().NoError(err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})
	s.Require().NoError(s.redisClient.Ping(s.ctx).Err())

	s.userRepo = NewPgUserRepository(s.pgPool, s.logger)
	s.revocations = NewRedisRevocationStore(s.redisClient, s.logger)
}

func (s *DatabaseIntegrationSuite) TearDownSuite() {
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *DatabaseIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE TABLE users CASCADE")
	s.Require().NoError(err)
}

func (s *DatabaseIntegrationSuite) TestMigrationVersion() {
	m := NewMigrator(s.pgPool, s.logger)
	version, dirty, err := m.Version()
	s.Require().NoError(err)
	s.Equal(uint(1), version)
	s.False(dirty)
	s.NoError(m.Up(), "re-applying is a no-op")
}

func TestDatabaseIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		cli.Close()
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(DatabaseIntegrationSuite))
}

func (s *DatabaseIntegrationSuite) createUser(email string, verified bool) *models.User {
	u := &models.User{Email: email, Name: "Test", PasswordHash: "hash", IsVerified: verified, IsActive: true}
	s.Require().NoError(s.userRepo.CreateUser(s.ctx, u))
	return u
}

func (s *DatabaseIntegrationSuite) TestCreateUser_Duplicate() {
	u := s.createUser("alice@example.com", false)
	s.NotEqual(uuid.Nil, u.ID)
	s.False(u.CreatedAt.IsZero())

	err := s.userRepo.CreateUser(s.ctx, &models.User{Email: "alice@example.com", Name: "A", PasswordHash: "h", IsActive: true})
	s.ErrorIs(err, models.ErrEmailAlreadyExists)

	// Email match is case-sensitive as stored.
	s.createUser("Alice@example.com", false)
	_, err = s.userRepo.GetUserByEmail(s.ctx, "ALICE@example.com")
	s.ErrorIs(err, models.ErrUserNotFound)
}

func (s *DatabaseIntegrationSuite) TestGetUserByID_NotFound() {
	_, err := s.userRepo.GetUserByID(s.ctx, uuid.New())
	s.ErrorIs(err, models.ErrUserNotFound)
}

func (s *DatabaseIntegrationSuite) TestSingleUseToken_LockClearAndReissue() {
	u := s.createUser("bob@example.com", false)
	exp := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.userRepo.SetSingleUseToken(s.ctx, u.ID, models.TokenKindVerification, models.NewSingleUseToken("hash-1", exp)))
	s.Require().NoError(s.userRepo.SetSingleUseToken(s.ctx, u.ID, models.TokenKindVerification, models.NewSingleUseToken("hash-2", exp)))

	err := s.userRepo.WithTx(s.ctx, func(ctx context.Context, tx interfaces.UserTx) error {
		_, err := tx.LockUserBySingleUseToken(ctx, models.TokenKindVerification, "hash-1")
		return err
	})
	s.ErrorIs(err, models.ErrTokenNotFound, "reissue overwrites the previous token")

	err = s.userRepo.WithTx(s.ctx, func(ctx context.Context, tx interfaces.UserTx) error {
		locked, err := tx.LockUserBySingleUseToken(ctx, models.TokenKindVerification, "hash-2")
		if err != nil {
			return err
		}
		s.Equal(u.ID, locked.ID)
		s.Equal("hash-2", locked.Verification.Hash)
		s.True(locked.Verification.ExpiresAt.Equal(exp))
		if err := tx.ClearSingleUseToken(ctx, locked.ID, models.TokenKindVerification); err != nil {
			return err
		}
		return tx.MarkVerified(ctx, locked.ID)
	})
	s.Require().NoError(err)

	got, err := s.userRepo.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(got.IsVerified)
	s.True(got.Verification.IsZero())
}

func (s *DatabaseIntegrationSuite) TestWithTx_RollbackOnError() {
	u := s.createUser("carol@example.com", true)
	boom := errors.New("boom")

	err := s.userRepo.WithTx(s.ctx, func(ctx context.Context, tx interfaces.UserTx) error {
		if err := tx.UpdatePasswordHash(ctx, u.ID, "new-hash"); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.userRepo.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("hash", got.PasswordHash)
}

func (s *DatabaseIntegrationSuite) TestLockUserBySingleUseToken_ConcurrentRedeemOnce() {
	u := s.createUser("dave@example.com", true)
	s.Require().NoError(s.userRepo.SetSingleUseToken(s.ctx, u.ID, models.TokenKindPasswordReset,
		models.NewSingleUseToken("reset-hash", time.Now().Add(time.Hour))))

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.userRepo.WithTx(s.ctx, func(ctx context.Context, tx interfaces.UserTx) error {
				locked, err := tx.LockUserBySingleUseToken(ctx, models.TokenKindPasswordReset, "reset-hash")
				if err != nil {
					return err
				}
				time.Sleep(20 * time.Millisecond)
				return tx.ClearSingleUseToken(ctx, locked.ID, models.TokenKindPasswordReset)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, models.ErrTokenNotFound):
				notFound++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(workers-1, notFound)
}

func (s *DatabaseIntegrationSuite) TestTokenPairConstraint() {
	u := s.createUser("erin@example.com", false)
	_, err := s.pgPool.Exec(s.ctx, `UPDATE users SET verification_token_hash = 'x' WHERE id = $1`, u.ID)
	s.Error(err, "hash without expiry violates the pair constraint")
}

func (s *DatabaseIntegrationSuite) TestListUsersByStatus() {
	s.createUser("v1@example.com", true)
	s.createUser("v2@example.com", true)
	u := s.createUser("u1@example.com", false)
	_, err := s.pgPool.Exec(s.ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, u.ID)
	s.Require().NoError(err)

	counts := map[models.UserStatus]int{
		models.UserStatusAll:        3,
		models.UserStatusVerified:   2,
		models.UserStatusUnverified: 1,
		models.UserStatusActive:     2,
		models.UserStatusInactive:   1,
	}
	for status, want := range counts {
		users, err := s.userRepo.ListUsersByStatus(s.ctx, status)
		s.Require().NoError(err)
		s.Len(users, want, string(status))
	}

	_, err = s.userRepo.ListUsersByStatus(s.ctx, models.UserStatus("banned"))
	s.ErrorIs(err, models.ErrInvalidStatus)
}

func (s *DatabaseIntegrationSuite) TestUpdateNameAndSetAdmin() {
	u := s.createUser("frank@example.com", false)

	updated, err := s.userRepo.UpdateName(s.ctx, u.ID, "Frank")
	s.Require().NoError(err)
	s.Equal("Frank", updated.Name)

	admin, err := s.userRepo.SetAdmin(s.ctx, "frank@example.com", true, true)
	s.Require().NoError(err)
	s.True(admin.IsAdmin)
	s.True(admin.IsVerified)

	_, err = s.userRepo.SetAdmin(s.ctx, "nobody@example.com", true, false)
	s.ErrorIs(err, models.ErrUserNotFound)
}

func (s *DatabaseIntegrationSuite) TestRedisRevocationStore() {
	revoked, err := s.revocations.IsRevoked(s.ctx, "session-token")
	s.Require().NoError(err)
	s.False(revoked)

	exp := time.Now().Add(time.Minute)
	s.Require().NoError(s.revocations.Revoke(s.ctx, "session-token", exp))
	s.Require().NoError(s.revocations.Revoke(s.ctx, "session-token", exp))

	revoked, err = s.revocations.IsRevoked(s.ctx, "session-token")
	s.Require().NoError(err)
	s.True(revoked)

	ttl, err := s.redisClient.TTL(s.ctx, revokedKeyPrefix+"session-token").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)

	s.Require().NoError(s.revocations.Revoke(s.ctx, "expired-token", time.Now().Add(-time.Second)))
	revoked, err = s.revocations.IsRevoked(s.ctx, "expired-token")
	s.Require().NoError(err)
	s.False(revoked)
}
