package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquetes/internal/domain"
)

// Cache expõe as primitivas de string, hash e conjunto usadas pelo pollstore.
// Todas as chaves recebem o prefixo configurado.
type Cache struct {
	client *redis.Client
	prefix string
}

func NewCache(client *redis.Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n > 0, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", err)
	}
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Expire(ctx, c.key(key), ttl).Err(); err != nil {
		return unavailable("expire", err)
	}
	return nil
}

func (c *Cache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	vals, err := c.client.HGetAll(ctx, c.key(key)).Result()
	if err != nil {
		return nil, unavailable("hgetall", err)
	}
	return vals, nil
}

// ReplaceHash usa MULTI para que leitores nunca vejam um hash parcial.
func (c *Cache) ReplaceHash(ctx context.Context, key string, values map[string]string, ttl time.Duration) error {
	full := c.key(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full)
		if len(values) > 0 {
			pipe.HSet(ctx, full, values)
			if ttl > 0 {
				pipe.Expire(ctx, full, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return unavailable("hset", err)
	}
	return nil
}

func (c *Cache) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.client.SAdd(ctx, c.key(key), args...).Err(); err != nil {
		return unavailable("sadd", err)
	}
	return nil
}

func (c *Cache) SCard(ctx context.Context, key string) (int64, error) {
	n, err := c.client.SCard(ctx, c.key(key)).Result()
	if err != nil {
		return 0, unavailable("scard", err)
	}
	return n, nil
}

func (c *Cache) SIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := c.client.SIsMember(ctx, c.key(key), member).Result()
	if err != nil {
		return false, unavailable("sismember", err)
	}
	return ok, nil
}

func (c *Cache) key(chave string) string {
	if c.prefix == "" {
		return chave
	}
	return fmt.Sprintf("%s:%s", c.prefix, chave)
}

func unavailable(op string, err error) error {
	return domain.NewUnavailableError("redis", fmt.Errorf("redis cache: %s: %w", op, err))
}

var _ domain.Cache = (*Cache)(nil)
