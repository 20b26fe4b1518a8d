package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/inventory-catalog/internal/redissvc"
)

const (
	DailyBanLogKey  = "ratelimit:banlog:daily"
	strikeKeyPrefix = "ratelimit:strikes:"
	banKeyPrefix    = "ratelimit:ban:"
)

// RedisTracker shares strikes and bans between every process pointed at the
// same Redis server.
type RedisTracker struct {
	rdb    *redis.Client
	policy Policy
}

func NewRedisTracker(rs *redissvc.RedisService, policy Policy) *RedisTracker {
	return &RedisTracker{rdb: rs.Rdb(), policy: policy}
}

func (t *RedisTracker) IsBanned(ctx context.Context, target string) (bool, error) {
	n, err := t.rdb.Exists(ctx, banKeyPrefix+target).Result()
	if err != nil {
		return false, fmt.Errorf("checking ban for %s: %w", target, err)
	}
	return n > 0, nil
}

func (t *RedisTracker) AddStrike(ctx context.Context, target, route string) (bool, int, error) {
	key := strikeKeyPrefix + target

	var incr *redis.IntCmd
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, t.policy.StrikeWindow)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("recording strike for %s: %w", target, err)
	}

	strikes := int(incr.Val())
	if strikes < t.policy.MaxStrikes {
		return false, strikes, nil
	}

	entry, err := json.Marshal(BanLogEntry{Target: target, Route: route, Strikes: strikes, Time: time.Now()})
	if err != nil {
		return false, strikes, fmt.Errorf("encoding ban log entry: %w", err)
	}

	_, err = t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, banKeyPrefix+target, route, t.policy.BanDuration)
		pipe.Del(ctx, key)
		pipe.RPush(ctx, DailyBanLogKey, entry)
		return nil
	})
	if err != nil {
		return false, strikes, fmt.Errorf("banning %s: %w", target, err)
	}
	return true, strikes, nil
}

func (t *RedisTracker) DrainLog(ctx context.Context) ([]BanLogEntry, error) {
	var items *redis.StringSliceCmd
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, DailyBanLogKey, 0, -1)
		pipe.Del(ctx, DailyBanLogKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("draining ban log: %w", err)
	}

	var entries []BanLogEntry
	for _, item := range items.Val() {
		var entry BanLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
