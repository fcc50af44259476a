// Package cache holds the Redis read-through cache for computed title
// ratings. Every review mutation must invalidate the touched title's entry;
// the derived value is never cached without that rule.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const noReviews = "none" // sentinel so "no reviews yet" is cacheable too

type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRatingCache connects to Redis at the given URL. An empty URL disables
// caching; every method on a nil cache is a no-op miss.
func NewRatingCache(redisURL string, ttl time.Duration) (*RatingCache, error) {
	if redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RatingCache{client: client, ttl: ttl}, nil
}

func key(titleID int64) string {
	return fmt.Sprintf("title:rating:%d", titleID)
}

// Get returns (rating, true) on a hit. A hit may carry a nil rating, meaning
// the title is known to have no reviews.
func (c *RatingCache) Get(ctx context.Context, titleID int64) (*float64, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key(titleID)).Result()
	if err != nil {
		return nil, false
	}
	if val == noReviews {
		return nil, true
	}
	rating, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false
	}
	return &rating, true
}

func (c *RatingCache) Set(ctx context.Context, titleID int64, rating *float64) {
	if c == nil || c.client == nil {
		return
	}
	val := noReviews
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'f', -1, 64)
	}
	// best effort; a failed write only costs a recomputation
	c.client.Set(ctx, key(titleID), val, c.ttl)
}

// Invalidate drops the cached rating after a review mutation.
func (c *RatingCache) Invalidate(ctx context.Context, titleID int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key(titleID))
}

func (c *RatingCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
