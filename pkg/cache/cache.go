package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// TTL constants
const (
	TTLUnread  = 30 * time.Second // unread badge (refreshed often)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixUnread = "msg:unread:"
)

// Service is the Redis cache for the messaging core. The only cached value is
// the per-user global unread badge; everything else is served from the store.
type Service interface {
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	SetUnreadCount(ctx context.Context, userID string, count int64) error
	InvalidateUnreadCount(ctx context.Context, userIDs ...string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	if c.client == nil {
		return 0, ErrCacheMiss
	}
	val, err := c.client.Get(ctx, PrefixUnread+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

func (c *redisCache) SetUnreadCount(ctx context.Context, userID string, count int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, PrefixUnread+userID, strconv.FormatInt(count, 10), TTLUnread).Err()
}

func (c *redisCache) InvalidateUnreadCount(ctx context.Context, userIDs ...string) error {
	if c.client == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, PrefixUnread+id)
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}
