package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sthamann/AXP/pkg/evidence"
)

const (
	redisEvidencePrefix = "axp:evidence:"
	redisHistoryPrefix  = "axp:evidence:history:"
)

// RedisCache shares evidence and payload history across instances.
// Entries carry a Redis TTL matching the evidence TTL, so expiry is
// enforced server-side as well as by Evidence.Fresh.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis instance at url and verifies the
// connection with a ping.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*evidence.Evidence, error) {
	raw, err := c.client.Get(ctx, redisEvidencePrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var ev evidence.Evidence
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return &ev, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, ev *evidence.Evidence) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}

	ttl := ev.TTLHours
	if ttl <= 0 {
		ttl = evidence.DefaultTTLHours
	}
	if err := c.client.Set(ctx, redisEvidencePrefix+key, raw, time.Duration(ttl)*time.Hour).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("redis encode history %s: %w", key, err)
	}
	pipe := c.client.Pipeline()
	pipe.LPush(ctx, redisHistoryPrefix+key, payload)
	pipe.LTrim(ctx, redisHistoryPrefix+key, 0, historyDepth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis history %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) History(ctx context.Context, key string) ([]map[string]interface{}, error) {
	rows, err := c.client.LRange(ctx, redisHistoryPrefix+key, 0, historyDepth-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history %s: %w", key, err)
	}
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(row), &data); err != nil {
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func (c *RedisCache) Close() error { return c.client.Close() }
