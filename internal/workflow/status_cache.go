package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const StatusCacheKeyPrefix = "leave:workflow:status:"

func GetStatusCacheKey(threadID string) string {
	return StatusCacheKeyPrefix + threadID
}

// StatusCache holds status projections between transitions. Implementations
// swallow their own failures; a miss only costs a checkpoint load.
type StatusCache interface {
	Get(ctx context.Context, threadID string) (*StatusResponse, bool)
	Set(ctx context.Context, resp StatusResponse)
	Invalidate(ctx context.Context, threadID string)
}

type redisStatusCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) StatusCache {
	l := zap.L().Named("workflow.cache")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workflow.cache")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisStatusCache{rdb: rdb, ttl: ttl, logger: l}
}

func (c *redisStatusCache) Get(ctx context.Context, threadID string) (*StatusResponse, bool) {
	key := GetStatusCacheKey(threadID)
	cached, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("read status cache failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var resp StatusResponse
	if err := json.Unmarshal([]byte(cached), &resp); err != nil {
		c.logger.Warn("decode status cache failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (c *redisStatusCache) Set(ctx context.Context, resp StatusResponse) {
	key := GetStatusCacheKey(resp.ThreadID)
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("encode status cache failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("write status cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *redisStatusCache) Invalidate(ctx context.Context, threadID string) {
	key := GetStatusCacheKey(threadID)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.logger.Error("failed to invalidate status cache", zap.String("key", key), zap.Error(err))
	}
}
