package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another holder kept the lock for the whole wait.
var ErrLockHeld = errors.New("cache lock held")

const lockPollInterval = 20 * time.Millisecond

// compare-and-delete: a lock re-taken after expiry stays with its new holder
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// CacheService stores JSON values in Redis.
// Get on a missing key leaves dest untouched and returns nil.
type CacheService struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewCacheService(client redis.UniversalClient, logger *zap.Logger) (*CacheService, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}, nil
}

// NewFromURL parses a redis:// URL.
func NewFromURL(url string, logger *zap.Logger) (*CacheService, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewCacheService(redis.NewClient(opts), logger)
}

func (c *CacheService) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("cache_decode_failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *CacheService) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// Lock takes key with SETNX and polls until it is free or wait elapses.
// The lock expires after ttl even if unlock is never called.
func (c *CacheService) Lock(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("cache lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// release even if the request ctx is already done
				if err := unlockScript.Run(context.Background(), c.client, []string{key}, token).Err(); err != nil {
					c.logger.Warn("cache_unlock_failed", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockHeld
		}

		timer := time.NewTimer(lockPollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
