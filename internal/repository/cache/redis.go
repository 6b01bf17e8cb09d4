package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/local_directory/internal/domain"
)

// RedisCache caches review pages per catalog entity. Rating summaries are
// deliberately not cached: they are recomputed from the live review set so
// they always reflect the latest accepted mutation.
type RedisCache struct {
	client         *redis.Client
	reviewsListTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, reviewsListTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         client,
		reviewsListTTL: reviewsListTTL,
	}
}

func (c *RedisCache) reviewsListKey(entity domain.EntityType, entityID uuid.UUID, limit, offset int) string {
	return fmt.Sprintf("entity:%s:%s:reviews:limit:%d:offset:%d", entity, entityID.String(), limit, offset)
}

func (c *RedisCache) entityCacheKeysSet(entity domain.EntityType, entityID uuid.UUID) string {
	return fmt.Sprintf("entity:%s:%s:cache_keys", entity, entityID.String())
}

// GetEntityReviews retrieves a cached review page for an entity
func (c *RedisCache) GetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	key := c.reviewsListKey(entity, entityID, limit, offset)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var reviews []*domain.Review
	if err := json.Unmarshal([]byte(val), &reviews); err != nil {
		return nil, err
	}

	return reviews, nil
}

// SetEntityReviews stores a review page and tracks the key in a SET so the
// whole family of pages can be invalidated on mutation
func (c *RedisCache) SetEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID, limit, offset int, reviews []*domain.Review) error {
	key := c.reviewsListKey(entity, entityID, limit, offset)
	trackingKey := c.entityCacheKeysSet(entity, entityID)

	data, err := json.Marshal(reviews)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, key, data, c.reviewsListTTL)
	pipe.SAdd(ctx, trackingKey, key)
	pipe.Expire(ctx, trackingKey, c.reviewsListTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateEntityReviews removes all cached review pages for an entity using
// SET-based key tracking
func (c *RedisCache) InvalidateEntityReviews(ctx context.Context, entity domain.EntityType, entityID uuid.UUID) error {
	trackingKey := c.entityCacheKeysSet(entity, entityID)

	keys, err := c.client.SMembers(ctx, trackingKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	if len(keys) > 0 {
		keys = append(keys, trackingKey)
		return c.client.Unlink(ctx, keys...).Err()
	}

	return nil
}
