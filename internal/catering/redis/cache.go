package redis

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-catering/internal/catering/service"
)

const statsKeyPrefix = "meal_stats:"

// StatsCache keeps the per-meal aggregate warm for the few seconds between
// scan-station polls. Entries expire on a short TTL and are invalidated
// eagerly whenever a validation lands.
type StatsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStatsCache(client *redis.Client) *StatsCache {
	return &StatsCache{
		Client: client,
		TTL:    statsTTLFromEnv(),
	}
}

// statsTTLFromEnv returns the cache TTL from the environment or the default
// 30 seconds.
func statsTTLFromEnv() time.Duration {
	ttlStr := os.Getenv("STATS_CACHE_TTL_SECONDS")
	if ttlStr == "" {
		return 30 * time.Second
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(ttlSec) * time.Second
}

func (c *StatsCache) GetMealStats(ctx context.Context, mealID string) (*service.MealStats, bool) {
	payload, err := c.Client.Get(ctx, statsKeyPrefix+mealID).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		// A cache miss is the worst case; the caller recomputes.
		return nil, false
	}

	var stats service.MealStats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) SetMealStats(ctx context.Context, mealID string, stats *service.MealStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, statsKeyPrefix+mealID, payload, c.TTL).Err()
}

func (c *StatsCache) InvalidateMealStats(ctx context.Context, mealID string) error {
	return c.Client.Del(ctx, statsKeyPrefix+mealID).Err()
}
