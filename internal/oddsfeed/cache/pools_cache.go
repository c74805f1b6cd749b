package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

// mesma chave que o pool-projector escreve
func keyMatch(matchID string) string { return "pools:current:" + matchID }

func (c *Cache) GetPools(ctx context.Context, matchID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyMatch(matchID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetPools(ctx context.Context, matchID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyMatch(matchID), b, ttl).Err()
}
