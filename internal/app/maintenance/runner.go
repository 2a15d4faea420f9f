package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Runner dispara as rotinas a cada intervalo até o contexto ser cancelado.
type Runner struct {
	sweeper  *Sweeper
	interval time.Duration
	log      *slog.Logger
}

func NewRunner(sweeper *Sweeper, interval time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{sweeper: sweeper, interval: interval, log: log}
}

// Run executa uma rodada imediatamente e depois uma por intervalo.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.rodada(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) rodada(ctx context.Context) {
	reports, err := r.sweeper.RunAll(ctx)
	if err != nil && ctx.Err() == nil {
		r.log.ErrorContext(ctx, "rodada de manutencao com falhas", "error", err)
	}
	for _, rep := range reports {
		r.log.DebugContext(ctx, "rotina executada", "action", rep.Action, "afetadas", rep.Affected)
	}
}
