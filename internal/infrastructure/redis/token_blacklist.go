package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mutugading/goapps-backend/services/hr/internal/infrastructure/config"
)

const blacklistPrefix = "iam:blacklist:"

// TokenBlacklist checks the shared IAM token blacklist so a logout in IAM
// is enforced here too.
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist connects to the IAM Redis.
func NewTokenBlacklist(ctx context.Context, cfg *config.RedisConfig) (*TokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     5,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to auth redis: %w", err)
	}

	log.Info().
		Str("address", cfg.Address()).
		Int("db", cfg.DB).
		Msg("Auth Redis (token blacklist) connection established")

	return NewTokenBlacklistFromRedis(client), nil
}

// NewTokenBlacklistFromRedis wraps an existing client.
func NewTokenBlacklistFromRedis(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// IsBlacklisted checks if a token id is on the blacklist.
func (tb *TokenBlacklist) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	exists, err := tb.client.Exists(ctx, blacklistPrefix+tokenID).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return false, fmt.Errorf("blacklist check failed: %w", err)
	}
	return exists > 0, nil
}

// Close closes the auth Redis connection.
func (tb *TokenBlacklist) Close() error {
	return tb.client.Close()
}
