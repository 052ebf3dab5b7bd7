package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/postcampaign-backend/internal/model"
)

// RedisStatsCache keeps per-campaign post counts for the dashboard header.
// Entries are dropped whenever a post in the campaign changes.
type RedisStatsCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func statsKey(campaignID int) string {
	return fmt.Sprintf("campaign_stats:%d", campaignID)
}

func (c *RedisStatsCache) Get(ctx context.Context, campaignID int) (map[model.PostStatus]int, bool) {
	raw, err := c.Client.Get(ctx, statsKey(campaignID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Println("⚠️ stats cache read failed:", err)
		}
		return nil, false
	}

	var stats map[model.PostStatus]int
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return stats, true
}

func (c *RedisStatsCache) Set(ctx context.Context, campaignID int, stats map[model.PostStatus]int) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, statsKey(campaignID), raw, c.TTL).Err(); err != nil {
		log.Println("⚠️ stats cache write failed:", err)
	}
}

func (c *RedisStatsCache) Invalidate(ctx context.Context, campaignID int) {
	if err := c.Client.Del(ctx, statsKey(campaignID)).Err(); err != nil {
		log.Println("⚠️ stats cache invalidate failed:", err)
	}
}
