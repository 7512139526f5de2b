// internal/workers/extraction/fetch-document/cache.go
package fetchdocument

import (
	"context"
	"errors"
	"time"

	"formqa/internal/common/database"
	"formqa/internal/common/logger"
)

const cacheKeyPrefix = "formqa:document:"

// DocumentCache stores fetched documents by normalized URL. Failures are never fatal.
type DocumentCache interface {
	Get(ctx context.Context, normalizedURL string) (string, bool)
	Put(ctx context.Context, normalizedURL, document string)
}

// RedisCache is the Redis-backed DocumentCache.
type RedisCache struct {
	client *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisCache(client *database.RedisClient, ttl time.Duration, log logger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "document-cache"}),
	}
}

func (c *RedisCache) Get(ctx context.Context, normalizedURL string) (string, bool) {
	b, err := c.client.GetBytes(ctx, cacheKeyPrefix+normalizedURL)
	if err != nil {
		if !errors.Is(err, database.ErrCacheMiss) {
			c.logger.Warn("document cache read failed", map[string]interface{}{
				"url":   normalizedURL,
				"error": err.Error(),
			})
		}
		return "", false
	}
	return string(b), true
}

func (c *RedisCache) Put(ctx context.Context, normalizedURL, document string) {
	if err := c.client.SetBytes(ctx, cacheKeyPrefix+normalizedURL, []byte(document), c.ttl); err != nil {
		c.logger.Warn("document cache write failed", map[string]interface{}{
			"url":   normalizedURL,
			"error": err.Error(),
		})
	}
}
