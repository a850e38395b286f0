package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RankingCacheTTL bounds staleness of a cached ranked track list between
// invalidations. Clients reconcile on their own poll interval anyway.
const RankingCacheTTL = 30 * time.Second

// CacheService provides a Redis cache-aside layer for per-event ranked
// track lists.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client and all
// cache operations become no-ops.
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Str("url", redisURL).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{}
	}

	log.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetRanking retrieves a cached ranking payload for an event. Returns nil
// when not cached or caching is disabled.
func (c *CacheService) GetRanking(ctx context.Context, eventID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, rankingKey(eventID)).Bytes()
	if err == redis.Nil {
		observeCache(false)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	observeCache(true)
	return data, nil
}

// SetRanking stores a ranking payload for an event.
func (c *CacheService) SetRanking(ctx context.Context, eventID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, rankingKey(eventID), b, RankingCacheTTL).Err()
}

// InvalidateEvent removes an event's cached ranking (called after any vote
// or track mutation).
func (c *CacheService) InvalidateEvent(ctx context.Context, eventID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, rankingKey(eventID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func rankingKey(eventID string) string {
	return fmt.Sprintf("ranking:%s", eventID)
}
