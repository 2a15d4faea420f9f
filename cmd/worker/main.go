// Worker de manutenção: expira enquetes vencidas, limpa anônimas e arquiva as antigas em intervalo fixo.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/enquetes/internal/app/bootstrap"
	"github.com/marcelojr/enquetes/internal/app/maintenance"
	"github.com/marcelojr/enquetes/internal/platform/config"
	"github.com/marcelojr/enquetes/internal/platform/health"
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

	// Worker usa o mesmo PollStore da API para manter cache e banco coerentes nas rotinas.
	deps, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		logger.Fatal("falha ao inicializar dependencias", "err", err)
	}
	defer deps.Close()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Worker.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/readyz", deps.Checker.ReadyHandler())
		mux.HandleFunc("/healthz", health.LiveHandler())
		srv := &http.Server{Addr: cfg.Worker.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			log.Info("worker metrics ouvindo", "addr", cfg.Worker.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	runner := maintenance.NewRunner(deps.Sweeper, cfg.Maintenance.Interval, log)
	g.Go(func() error {
		log.Info("worker iniciado", "intervalo", cfg.Maintenance.Interval)
		return runner.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("worker finalizado com erro", "err", err)
	}
	log.Info("worker finalizado")
}
