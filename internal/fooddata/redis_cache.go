package fooddata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// SearchCache stores search results keyed by query and page size
type SearchCache interface {
	GetSearch(ctx context.Context, query string, pageSize int) ([]FoodSummary, bool, error)
	SetSearch(ctx context.Context, query string, pageSize int, foods []FoodSummary) error
}

// RedisSearchCache keeps search results in Redis with a TTL
type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSearchCache wraps an existing Redis client
func NewRedisSearchCache(client *redis.Client, ttl time.Duration) *RedisSearchCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSearchCache{client: client, ttl: ttl}
}

func searchKey(query string, pageSize int) string {
	return fmt.Sprintf("fdc:search:%d:%s", pageSize, strings.ToLower(strings.TrimSpace(query)))
}

// GetSearch returns cached results; the bool is false on a miss
func (c *RedisSearchCache) GetSearch(ctx context.Context, query string, pageSize int) ([]FoodSummary, bool, error) {
	result := c.client.Get(ctx, searchKey(query, pageSize))
	if result.Err() == redis.Nil {
		return nil, false, nil
	}
	if result.Err() != nil {
		return nil, false, result.Err()
	}

	var foods []FoodSummary
	if err := json.Unmarshal([]byte(result.Val()), &foods); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached search: %w", err)
	}
	return foods, true, nil
}

// SetSearch stores results for the configured TTL
func (c *RedisSearchCache) SetSearch(ctx context.Context, query string, pageSize int, foods []FoodSummary) error {
	data, err := json.Marshal(foods)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(query, pageSize), data, c.ttl).Err()
}
