package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appLogger "github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/config"
)

// ErrCacheMiss is returned by Get for an absent key.
var ErrCacheMiss = redis.Nil

type KeydbClient struct {
	client *redis.Client
	logger appLogger.Logger
	config config.Cache
}

func NewKeyDBClient(config config.Cache, logger appLogger.Logger) *KeydbClient {
	opts := &redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           int(config.DB),
		PoolSize:     int(config.PoolSize),
		MinIdleConns: int(config.MinIdleConns),
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
		MaxRetries:   int(config.MaxRetries),
	}

	return &KeydbClient{
		client: redis.NewClient(opts),
		logger: logger,
		config: config,
	}
}

func (c *KeydbClient) Name() string {
	return "keydb"
}

func (c *KeydbClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *KeydbClient) Close() error {
	return c.client.Close()
}

func (c *KeydbClient) Get(ctx context.Context, key string) ([]byte, error) {
	startTime := time.Now()

	result, err := c.client.Get(ctx, key).Bytes()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("hit", err == nil).
		Msg("keydb get operation")

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}

		c.logger.Error().
			Err(err).
			Str("key", key).
			Msg("keydb get operation failed")

		return nil, err
	}

	return result, nil
}

// Set stores value with ttl, falling back to the configured default expiry
// when ttl is zero.
func (c *KeydbClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.config.DefaultExpiry
	}

	startTime := time.Now()
	err := c.client.Set(ctx, key, value, ttl).Err()

	c.logger.Debug().
		Str("key", key).
		Str("expiry", ttl.String()).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("keydb set operation")

	return err
}

// Lock sets key only if it is absent.
func (c *KeydbClient) Lock(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	acquired, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring lock: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Str("expiry", ttl.String()).
		Bool("acquired", acquired).
		Msg("keydb setnx operation")

	return acquired, nil
}

func (c *KeydbClient) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, key).Err()

	c.logger.Debug().
		Str("key", key).
		Bool("success", err == nil).
		Msg("keydb delete operation")

	return err
}

// GetInt64 returns 0 for an absent key.
func (c *KeydbClient) GetInt64(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return val, nil
}

func (c *KeydbClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// compareAndSwapScript replaces KEYS[1] with ARGV[2] only while it still
// holds ARGV[1].
var compareAndSwapScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false or tonumber(current) ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

// CompareAndSwapInt64 atomically sets key to new when it currently holds old.
func (c *KeydbClient) CompareAndSwapInt64(ctx context.Context, key string, old, new int64, ttl time.Duration) (bool, error) {
	result, err := compareAndSwapScript.Run(ctx, c.client, []string{key}, old, new, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

// TTL returns the remaining time-to-live of a key.
func (c *KeydbClient) TTL(ctx context.Context, key string) time.Duration {
	result, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to get TTL")

		return 0
	}

	return result
}
