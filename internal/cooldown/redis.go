package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis keeps cooldowns in Redis so several bot processes share them.
// Keys expire on their own, values hold the expiry in unix nanoseconds.
type Redis struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedis connects and pings addr.
func NewRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, prefix: prefix}, nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Remaining(ctx context.Context, key string) (time.Duration, error) {
	raw, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get: %w", err)
	}
	expiry, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	remaining := expiry - time.Now().UnixNano()
	if remaining < 0 {
		return 0, nil
	}
	return time.Duration(remaining), nil
}

func (r *Redis) Mark(ctx context.Context, key string, ttl time.Duration) error {
	expiry := time.Now().Add(ttl).UnixNano()
	if err := r.rdb.Set(ctx, r.key(key), strconv.FormatInt(expiry, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
