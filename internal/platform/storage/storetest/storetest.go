// Pacote storetest monta o PollStore real sobre SQLite em memória e miniredis para
// os testes dos serviços e de aceitação.
package storetest

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/migrations"
	"github.com/marcelojr/enquetes/internal/platform/storage/pollstore"
	"github.com/marcelojr/enquetes/internal/platform/storage/postgres"
	"github.com/marcelojr/enquetes/internal/platform/storage/redis"
)

const KeyPrefix = "enquetes"

// OpenDB abre um banco SQLite compartilhado e exclusivo do teste, já migrado.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ids.NewULID())
	db, err := gorm.Open(sqlite.Open(dsn), postgres.Config())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func Durable(db *gorm.DB) pollstore.Durable {
	return pollstore.Durable{
		Polls:        postgres.NewPollRepository(db),
		Slides:       postgres.NewSlideRepository(db),
		Options:      postgres.NewOptionRepository(db),
		Votes:        postgres.NewVoteRepository(db),
		Participants: postgres.NewParticipantRepository(db),
	}
}

// Env reúne o que os testes costumam inspecionar além do Store.
type Env struct {
	DB    *gorm.DB
	Store *pollstore.Store
	Redis *miniredis.Miniredis
	Cache domain.Cache
}

// New monta o Store com cache (miniredis) ou sem cache.
func New(t testing.TB, clock domain.Clock, withCache bool) Env {
	t.Helper()

	db := OpenDB(t)
	env := Env{DB: db}
	if withCache {
		env.Redis = miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: env.Redis.Addr()})
		t.Cleanup(func() { client.Close() })
		env.Cache = redis.NewCache(client, KeyPrefix)
	}
	env.Store = pollstore.New(Durable(db), env.Cache, clock)
	return env
}

// Modes devolve os dois modos de cache para testes de equivalência.
func Modes() map[string]bool {
	return map[string]bool{"com cache": true, "sem cache": false}
}
