package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Counter is a live rate-limit window as stored in Redis.
type Counter struct {
	Key   string
	Count int64
	TTL   time.Duration
}

// Counters walks the counters of a scope with SCAN. An empty scope matches
// every limited route.
func (l *FixedWindowLimiter) Counters(ctx context.Context, scope string, batch int64) ([]Counter, error) {
	if l.rdb == nil {
		return nil, nil
	}
	if scope == "" {
		scope = "*"
	}
	if batch <= 0 {
		batch = 200
	}
	pattern := fmt.Sprintf("%s:%s:*", l.prefix, scope)

	var (
		out    []Counter
		cursor uint64
	)
	for {
		keys, next, err := l.rdb.Scan(ctx, cursor, pattern, batch).Result()
		if err != nil {
			return nil, fmt.Errorf("ratelimit scan: %w", err)
		}
		for _, k := range keys {
			c, err := l.counter(ctx, k)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out = append(out, *c)
			}
		}
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

func (l *FixedWindowLimiter) counter(ctx context.Context, key string) (*Counter, error) {
	raw, err := l.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		// expired between SCAN and GET
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ratelimit get %s: %w", key, err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ratelimit get %s: %w", key, err)
	}
	ttl, err := l.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("ratelimit pttl %s: %w", key, err)
	}
	return &Counter{Key: key, Count: n, TTL: ttl}, nil
}

// Reset drops the window for one caller so it can retry immediately.
func (l *FixedWindowLimiter) Reset(ctx context.Context, scope, identity string) (bool, error) {
	if l.rdb == nil {
		return false, nil
	}
	n, err := l.rdb.Del(ctx, l.Key(scope, identity)).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit reset: %w", err)
	}
	return n > 0, nil
}
