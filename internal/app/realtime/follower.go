package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/enquetes/internal/domain"
)

// FetchFunc busca o snapshot completo de uma enquete.
type FetchFunc func(ctx context.Context, code string) (domain.Snapshot, error)

// Follower acompanha uma enquete por dois caminhos independentes: mensagens do
// barramento e uma consulta em intervalo fixo. Qualquer um dos dois basta sozinho.
type Follower struct {
	sub      domain.Subscriber
	fetch    FetchFunc
	interval time.Duration
	log      *slog.Logger
}

func NewFollower(sub domain.Subscriber, fetch FetchFunc, interval time.Duration, log *slog.Logger) *Follower {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Follower{sub: sub, fetch: fetch, interval: interval, log: log}
}

// Run bloqueia até o contexto terminar ou a enquete sumir. onChange é chamado em série,
// sempre com o estado já reduzido.
func (f *Follower) Run(ctx context.Context, code string, onChange func(event string, snap domain.Snapshot) error) error {
	state := NewState()
	var mu sync.Mutex
	aplicar := func(event string, snap domain.Snapshot) error {
		mu.Lock()
		defer mu.Unlock()
		if !state.Apply(snap) {
			return nil
		}
		return onChange(event, state.Snapshot())
	}

	g, gctx := errgroup.WithContext(ctx)

	if f.sub != nil {
		msgs, err := f.sub.Subscribe(gctx, Channel(code))
		if err != nil {
			f.log.WarnContext(ctx, "realtime: assinatura indisponivel, seguindo apenas com consulta periodica", "code", code, "error", err)
		} else {
			g.Go(func() error {
				for msg := range msgs {
					var snap domain.Snapshot
					if err := json.Unmarshal(msg.Payload, &snap); err != nil {
						f.log.WarnContext(gctx, "realtime: payload invalido", "event", msg.Event, "error", err)
						continue
					}
					if err := aplicar(msg.Event, snap); err != nil {
						return err
					}
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			snap, err := f.fetch(gctx, code)
			switch {
			case err == nil:
				if err := aplicar(EventPollUpdated, snap); err != nil {
					return err
				}
			case domain.IsNotFound(err):
				return err
			case gctx.Err() == nil:
				f.log.WarnContext(gctx, "realtime: consulta periodica falhou", "code", code, "error", err)
			}

			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
