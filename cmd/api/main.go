// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/enquetes/internal/app/bootstrap"
	"github.com/marcelojr/enquetes/internal/app/httpapi"
	"github.com/marcelojr/enquetes/internal/platform/config"
	"github.com/marcelojr/enquetes/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	log := bootstrap.NewLogger(cfg)

	deps, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		logger.Fatal("falha ao inicializar dependencias", "err", err)
	}
	defer deps.Close()

	api := httpapi.New(
		deps.Polls,
		deps.Voting,
		deps.Presentations,
		deps.Admin,
		deps.Auth,
		deps.Follower(),
		httpapi.Options{
			AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
			SecureCookies:  cfg.HTTP.SecureCookies,
			Heartbeat:      cfg.Realtime.Heartbeat,
			Ready:          deps.Checker,
		},
		log,
	)

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api ouvindo", "addr", cfg.HTTP.Address, "cache", deps.Store.CacheEnabled(), "realtime", deps.RealtimeBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// Streams SSE seguram conexões abertas; o timeout corta quem não terminar a tempo.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("erro no servidor", "err", err)
	}
	log.Info("api finalizada")
}
