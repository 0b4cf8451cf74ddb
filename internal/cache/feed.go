// Package cache provides short-lived caching for the public feed.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gunaso-platform/grievance/internal/model"
)

// DefaultFeedTTL keeps feed pages fresh enough that new reports and
// upvotes surface within a minute.
const DefaultFeedTTL = 30 * time.Second

// FeedCache caches ranked public feed pages in Redis.
type FeedCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewFeedCache creates a feed cache. A zero ttl falls back to DefaultFeedTTL.
func NewFeedCache(client redis.UniversalClient, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = DefaultFeedTTL
	}
	return &FeedCache{
		client: client,
		ttl:    ttl,
		prefix: "feed",
	}
}

// key generates a cache key for one feed page.
func (c *FeedCache) key(sortMode, categoryKey, priority string, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", c.prefix, sortMode, categoryKey, priority, limit)
}

// Get retrieves a cached feed page. A miss returns (nil, nil).
func (c *FeedCache) Get(ctx context.Context, sortMode, categoryKey, priority string, limit int) ([]model.PublicCase, error) {
	data, err := c.client.Get(ctx, c.key(sortMode, categoryKey, priority, limit)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var page []model.PublicCase
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}

	return page, nil
}

// Set caches a feed page.
func (c *FeedCache) Set(ctx context.Context, sortMode, categoryKey, priority string, limit int, page []model.PublicCase) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.key(sortMode, categoryKey, priority, limit), data, c.ttl).Err()
}

// Invalidate drops every cached feed page. Called after any mutation
// that changes ranking input.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
