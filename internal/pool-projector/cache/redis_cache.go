package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// RedisCache encapsula o cache de pools correntes no Redis
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis para os pools correntes de uma partida
func key(matchID string) string { return "pools:current:" + matchID }

// SetCurrent armazena o snapshot de pools de uma partida com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, s events.PoolSnapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(s.MatchID), b, r.TTL).Err()
}
