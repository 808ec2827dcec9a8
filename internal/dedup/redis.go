package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobscribe/internal/config"
	"jobscribe/internal/logging"
	"jobscribe/internal/logging/types"
)

const defaultSeenTTL = 30 * 24 * time.Hour

// RedisTracker keeps seen listing ids in Redis so separate runs share them
type RedisTracker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger types.Logger
}

// NewRedisTracker connects using the redis and dedup sections of cfg
func NewRedisTracker(cfg *config.Config) (*RedisTracker, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	timeout := cfg.Redis.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	tracker := NewRedisTrackerWithClient(redis.NewClient(opts), cfg.Dedup.KeyPrefix, cfg.Dedup.TTL)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := tracker.client.Ping(ctx).Err(); err != nil {
		_ = tracker.client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	tracker.logger.Info("Seen tracker connected to Redis", map[string]interface{}{
		"addr":   opts.Addr,
		"prefix": tracker.prefix,
		"ttl":    tracker.ttl.String(),
	})
	return tracker, nil
}

// NewRedisTrackerWithClient wraps an existing client
func NewRedisTrackerWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisTracker {
	if prefix == "" {
		prefix = "jobscribe:seen"
	}
	if ttl <= 0 {
		ttl = defaultSeenTTL
	}
	return &RedisTracker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logging.GetGlobalLogger(),
	}
}

func (r *RedisTracker) Seen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	exists, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return exists > 0, nil
}

func (r *RedisTracker) MarkSeen(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := r.client.Set(ctx, r.key(id), time.Now().Unix(), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisTracker) Close() error {
	return r.client.Close()
}

func (r *RedisTracker) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}
