package health

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func openRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestReadyHandler(t *testing.T) {
	cases := []struct {
		nome      string
		montar    func(t *testing.T) *Checker
		statusEsp int
		corpoEsp  string
	}{
		{
			nome:      "todas as dependencias respondem",
			montar:    func(t *testing.T) *Checker { return NewChecker(openSQLite(t), openRedis(t)) },
			statusEsp: http.StatusOK,
			corpoEsp:  "ok",
		},
		{
			nome:      "sem redis configurado (cache desligado)",
			montar:    func(t *testing.T) *Checker { return NewChecker(openSQLite(t), nil) },
			statusEsp: http.StatusOK,
			corpoEsp:  "ok",
		},
		{
			nome: "banco fechado",
			montar: func(t *testing.T) *Checker {
				db := openSQLite(t)
				db.Close()
				return NewChecker(db, openRedis(t))
			},
			statusEsp: http.StatusServiceUnavailable,
			corpoEsp:  "database unavailable\n",
		},
		{
			nome: "redis fechado",
			montar: func(t *testing.T) *Checker {
				client := openRedis(t)
				client.Close()
				return NewChecker(openSQLite(t), client)
			},
			statusEsp: http.StatusServiceUnavailable,
			corpoEsp:  "redis unavailable\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			checker := tc.montar(t)
			w := httptest.NewRecorder()

			checker.ReadyHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tc.statusEsp, w.Code)
			assert.Equal(t, tc.corpoEsp, w.Body.String())
		})
	}
}

func TestCheck_QuandoContextoCancelado_DeveApontarBanco(t *testing.T) {
	checker := NewChecker(openSQLite(t), openRedis(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dep, err := checker.Check(ctx)

	assert.Error(t, err)
	assert.Equal(t, "database", dep)
}

func TestLiveHandler_DeveResponderSempre(t *testing.T) {
	w := httptest.NewRecorder()

	LiveHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
