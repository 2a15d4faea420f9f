// Pacote antifraude limita tentativas de voto em rajada (rate limit Redis e modo noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquetes/internal/domain"
)

var ErrRateLimitExceeded = errors.New("limite de tentativas de voto atingido")

// RedisRateLimiter conta tentativas por enquete, sessão e IP em janelas fixas.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Validar(ctx context.Context, tentativa domain.VoteAttempt) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		return nil
	}

	key := r.buildKey(tentativa)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return domain.NewUnavailableError("redis", fmt.Errorf("antifraude: incrementar chave: %w", err))
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return domain.NewUnavailableError("redis", fmt.Errorf("antifraude: definir expiracao: %w", err))
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(tentativa domain.VoteAttempt) string {
	// O hash evita guardar IP e token do votante em claro no Redis.
	base := fmt.Sprintf("%s|%s|%s", tentativa.Code, tentativa.VoterToken, tentativa.OriginIP)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.Antifraude = (*RedisRateLimiter)(nil)
