package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/domain"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func TestCache_GetSet_QuandoChaveNova_DeveUsarPrefixoETTL(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewCache(client, "enquetes")
	ctx := context.Background()

	// Act
	require.NoError(t, cache.Set(ctx, "poll:123456:slides", "[]", time.Minute))
	val, ok, err := cache.Get(ctx, "poll:123456:slides")

	// Assert
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", val)
	assert.True(t, mr.Exists("enquetes:poll:123456:slides"))
	assert.Equal(t, time.Minute, mr.TTL("enquetes:poll:123456:slides"))
}

func TestCache_Get_QuandoAusente_DeveRetornarFalse(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewCache(client, "")

	_, ok, err := cache.Get(context.Background(), "nada")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ReplaceHash_DeveSubstituirCamposAntigos(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewCache(client, "enquetes")
	ctx := context.Background()

	// Arrange
	require.NoError(t, cache.ReplaceHash(ctx, "poll:1", map[string]string{"status": "active", "extra": "x"}, time.Hour))

	// Act
	require.NoError(t, cache.ReplaceHash(ctx, "poll:1", map[string]string{"status": "completed"}, 30*time.Minute))

	// Assert
	vals, err := cache.HGetAll(ctx, "poll:1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "completed"}, vals)
	assert.Equal(t, 30*time.Minute, mr.TTL("enquetes:poll:1"))
}

func TestCache_Conjuntos_DeveContarMembrosDistintos(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewCache(client, "enquetes")
	ctx := context.Background()
	chave := "poll:1:slide:abc:voters"

	existe, err := cache.Exists(ctx, chave)
	require.NoError(t, err)
	assert.False(t, existe)

	// Act
	require.NoError(t, cache.SAdd(ctx, chave, "a", "b"))
	require.NoError(t, cache.SAdd(ctx, chave, "a"))
	require.NoError(t, cache.Expire(ctx, chave, time.Hour))

	// Assert
	total, err := cache.SCard(ctx, chave)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	membro, err := cache.SIsMember(ctx, chave, "b")
	require.NoError(t, err)
	assert.True(t, membro)

	require.NoError(t, cache.Del(ctx, chave))
	existe, err = cache.Exists(ctx, chave)
	require.NoError(t, err)
	assert.False(t, existe)
}

func TestCache_QuandoRedisFora_DeveRetornarUnavailable(t *testing.T) {
	client, mr := setupRedis(t)
	cache := NewCache(client, "enquetes")
	mr.Close()

	_, _, err := cache.Get(context.Background(), "qualquer")

	assert.ErrorIs(t, err, domain.ErrUnavailable)
}
