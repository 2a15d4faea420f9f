package maintenance

import (
	"context"

	"github.com/marcelojr/enquetes/internal/domain"
)

const limiteListagem = 100

// AdminService atende o painel administrativo. Administrador é quem tem linha em
// admin_users pelo id do usuário.
type AdminService struct {
	admins  domain.AdminRepository
	store   domain.PollStore
	sweeper *Sweeper
	status  domain.SystemStatus
}

func NewAdminService(admins domain.AdminRepository, store domain.PollStore, sweeper *Sweeper, status domain.SystemStatus) *AdminService {
	return &AdminService{admins: admins, store: store, sweeper: sweeper, status: status}
}

func (a *AdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return a.admins.IsAdmin(ctx, userID)
}

// ListPolls lista enquetes vivas, filtrando por status quando informado.
func (a *AdminService) ListPolls(ctx context.Context, status domain.PollStatus) ([]domain.PollSummary, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("status", "status invalido")
	}
	lista, err := a.store.List(ctx, domain.PollFilter{Status: status, Limit: limiteListagem})
	if err != nil {
		return nil, err
	}
	if lista == nil {
		lista = []domain.PollSummary{}
	}
	return lista, nil
}

func (a *AdminService) Stats(ctx context.Context) ([]domain.PresenterStats, error) {
	return a.admins.PresenterStats(ctx)
}

func (a *AdminService) SystemStatus() domain.SystemStatus {
	return a.status
}

func (a *AdminService) RunAction(ctx context.Context, action string) (domain.MaintenanceReport, error) {
	return a.sweeper.Run(ctx, action)
}

var _ domain.AdminService = (*AdminService)(nil)
