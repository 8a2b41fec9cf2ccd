package database

import (
	"context"
	"fmt"
	"time"

	"bitva-auth/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RetryPolicy controls how often startup connections are attempted.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// DefaultRetryPolicy matches container orchestration where dependencies start late.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 50, Delay: 3 * time.Second}

// ConnectPostgres creates a pgx pool and pings it, retrying per policy.
func ConnectPostgres(ctx context.Context, cfg *config.Config, policy RetryPolicy, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	logger.Info("Attempting to connect to PostgreSQL",
		zap.String("host", cfg.DBHost),
		zap.Int("max_retries", policy.MaxRetries),
		zap.Duration("retry_delay", policy.Delay),
	)

	var lastErr error
	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err == nil {
			err = pool.Ping(connectCtx)
			if err != nil {
				pool.Close()
			}
		}
		connectCancel()

		if err == nil {
			logger.Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}

		lastErr = err
		logger.Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", policy.MaxRetries),
			zap.Error(err),
		)
		if err := sleep(ctx, policy, attempt); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", policy.MaxRetries, lastErr)
}

// ConnectRedis creates a Redis client and pings it, retrying per policy.
func ConnectRedis(ctx context.Context, cfg *config.Config, policy RetryPolicy, logger *zap.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	logger.Info("Attempting to connect to Redis",
		zap.String("address", opts.Addr),
		zap.Int("db", opts.DB),
		zap.Int("max_retries", policy.MaxRetries),
	)

	var lastErr error
	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			logger.Info("Connected to Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		client.Close()
		lastErr = err
		logger.Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", policy.MaxRetries),
			zap.Error(err),
		)
		if err := sleep(ctx, policy, attempt); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", policy.MaxRetries, lastErr)
}

func sleep(ctx context.Context, policy RetryPolicy, attempt int) error {
	if attempt >= policy.MaxRetries {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(policy.Delay):
		return nil
	}
}
