// Pacote maintenance contém as rotinas periódicas de expiração e limpeza das enquetes
// e o painel administrativo que as dispara sob demanda.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

const (
	ActionCleanupAnonymous    = "cleanup_anonymous"
	ActionExpireAuthenticated = "expire_authenticated"
	ActionCleanupOld          = "cleanup_old"

	lote = 200
)

// Actions lista as rotinas na ordem em que o worker as executa.
var Actions = []string{ActionExpireAuthenticated, ActionCleanupAnonymous, ActionCleanupOld}

// Sweeper aplica as rotinas sobre o PollStore, então cache e banco ficam coerentes
// do mesmo jeito que nas mutações feitas pela API.
type Sweeper struct {
	store     domain.PollStore
	clock     domain.Clock
	retention time.Duration
	log       *slog.Logger
}

func NewSweeper(store domain.PollStore, clock domain.Clock, retention time.Duration, log *slog.Logger) *Sweeper {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{store: store, clock: clock, retention: retention, log: log}
}

// Run executa uma rotina pelo nome.
func (s *Sweeper) Run(ctx context.Context, action string) (domain.MaintenanceReport, error) {
	var (
		n   int
		err error
	)
	switch action {
	case ActionCleanupAnonymous:
		n, err = s.CleanupAnonymous(ctx)
	case ActionExpireAuthenticated:
		n, err = s.ExpireAuthenticated(ctx)
	case ActionCleanupOld:
		n, err = s.CleanupOld(ctx)
	default:
		return domain.MaintenanceReport{}, domain.NewValidationError("action", fmt.Sprintf("acao desconhecida: %q", action))
	}
	return domain.MaintenanceReport{Action: action, Affected: n}, err
}

// RunAll executa todas as rotinas; a falha de uma não impede as demais.
func (s *Sweeper) RunAll(ctx context.Context) ([]domain.MaintenanceReport, error) {
	var (
		reports []domain.MaintenanceReport
		errs    []error
	)
	for _, action := range Actions {
		report, err := s.Run(ctx, action)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", action, err))
		}
	}
	return reports, errors.Join(errs...)
}

// CleanupAnonymous exclui enquetes anônimas cujo prazo já passou, qualquer que seja o status.
func (s *Sweeper) CleanupAnonymous(ctx context.Context) (int, error) {
	filtro := domain.PollFilter{AnonymousOnly: true, ExpiresBefore: s.agora(), Limit: lote}
	return s.sweep(ctx, ActionCleanupAnonymous, filtro, func(poll domain.Poll) error {
		return s.store.Delete(ctx, poll)
	})
}

// ExpireAuthenticated marca como expiradas as enquetes com dono que ainda estão ativas
// depois do prazo. As anônimas expiram na leitura ou são excluídas pela limpeza.
func (s *Sweeper) ExpireAuthenticated(ctx context.Context) (int, error) {
	agora := s.agora()
	filtro := domain.PollFilter{Status: domain.PollStatusActive, OwnedOnly: true, ExpiresBefore: agora, Limit: lote}
	return s.sweep(ctx, ActionExpireAuthenticated, filtro, func(poll domain.Poll) error {
		_, err := s.store.TransitionStatus(ctx, poll, domain.PollStatusExpired, agora)
		return err
	})
}

// CleanupOld arquiva enquetes encerradas criadas antes da janela de retenção.
func (s *Sweeper) CleanupOld(ctx context.Context) (int, error) {
	agora := s.agora()
	limite := agora.Add(-s.retention)

	total := 0
	for _, status := range []domain.PollStatus{domain.PollStatusCompleted, domain.PollStatusExpired} {
		filtro := domain.PollFilter{Status: status, CreatedBefore: limite, Limit: lote}
		n, err := s.sweep(ctx, ActionCleanupOld, filtro, func(poll domain.Poll) error {
			return s.store.Archive(ctx, poll, agora)
		})
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// sweep lista em lotes e aplica a ação em cada enquete. Cada ação tira a enquete do
// filtro, então o laço termina quando um lote não avança.
func (s *Sweeper) sweep(ctx context.Context, action string, filtro domain.PollFilter, apply func(domain.Poll) error) (int, error) {
	afetadas := 0
	falhas := make(map[domain.PollID]bool)
	var ultimoErr error

	for {
		if err := ctx.Err(); err != nil {
			return afetadas, err
		}
		lista, err := s.store.List(ctx, filtro)
		if err != nil {
			return afetadas, err
		}

		progresso := 0
		for _, item := range lista {
			if falhas[item.ID] {
				continue
			}
			if err := apply(item.Poll); err != nil {
				if domain.IsNotFound(err) {
					continue
				}
				falhas[item.ID] = true
				ultimoErr = err
				s.log.WarnContext(ctx, "falha na manutencao", "action", action, "code", item.Code, "error", err)
				continue
			}
			progresso++
		}

		afetadas += progresso
		if progresso == 0 || len(lista) < filtro.Limit {
			break
		}
	}

	metrics.AddMaintenanceRows(action, afetadas)
	if afetadas > 0 {
		s.log.InfoContext(ctx, "manutencao concluida", "action", action, "afetadas", afetadas)
	}
	return afetadas, ultimoErr
}

func (s *Sweeper) agora() time.Time {
	return s.clock.Agora().UTC().Truncate(time.Microsecond)
}
