package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON load 返回 (nil, nil) 时写入 "null" 做负缓存，避免击穿
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}

// GetManyJSON 批量读；返回命中的 key → 值，以及未命中的 key（保持入参顺序）
func GetManyJSON[T any](c *Cache, ctx context.Context, keys []string) (map[string]T, []string) {
	hits := make(map[string]T, len(keys))
	raw, err := c.MGet(ctx, keys...)
	if err != nil {
		return hits, keys
	}
	var misses []string
	for i, b := range raw {
		if b == nil || string(b) == "null" {
			misses = append(misses, keys[i])
			continue
		}
		var v T
		if json.Unmarshal(b, &v) != nil {
			misses = append(misses, keys[i])
			continue
		}
		hits[keys[i]] = v
	}
	return hits, misses
}

func SetJSON(c *Cache, ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}
