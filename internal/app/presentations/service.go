// Pacote presentations guarda os decks de slides dos apresentadores e os transforma em enquetes ao vivo.
package presentations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelojr/enquetes/internal/app/polls"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
)

// PollCreator é o pedaço do ciclo de vida que o Launch usa.
type PollCreator interface {
	CreatePoll(ctx context.Context, in domain.CreatePollInput, presenterID string) (domain.PollView, error)
}

type Service struct {
	repo  domain.PresentationRepository
	polls PollCreator
	clock domain.Clock
	ids   *ids.Generator
	log   *slog.Logger
}

func NewService(repo domain.PresentationRepository, creator PollCreator, clock domain.Clock, idsGen *ids.Generator, log *slog.Logger) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, polls: creator, clock: clock, ids: idsGen, log: log}
}

func (s *Service) List(ctx context.Context, ownerID string) ([]domain.SavedPresentation, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	lista, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if lista == nil {
		lista = []domain.SavedPresentation{}
	}
	return lista, nil
}

// Get esconde apresentações de outros donos atrás de NotFound.
func (s *Service) Get(ctx context.Context, id domain.PresentationID, ownerID string) (domain.SavedPresentation, error) {
	if ownerID == "" {
		return domain.SavedPresentation{}, domain.ErrUnauthorized
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.SavedPresentation{}, err
	}
	if p.OwnerID != ownerID {
		return domain.SavedPresentation{}, domain.NewNotFoundError("apresentacao", string(id))
	}
	return p, nil
}

// Save cria quando o ID vem vazio e atualiza caso contrário.
func (s *Service) Save(ctx context.Context, p domain.SavedPresentation) (domain.SavedPresentation, error) {
	if p.OwnerID == "" {
		return domain.SavedPresentation{}, domain.ErrUnauthorized
	}
	if err := validate(&p); err != nil {
		return domain.SavedPresentation{}, err
	}

	agora := s.clock.Agora().UTC().Truncate(time.Microsecond)
	p.UpdatedAt = agora

	if p.ID == "" {
		p.ID = domain.PresentationID(s.ids.New())
		p.CreatedAt = agora
		if err := s.repo.Create(ctx, p); err != nil {
			return domain.SavedPresentation{}, err
		}
		s.log.InfoContext(ctx, "apresentacao criada", "id", p.ID, "slides", len(p.Slides))
		return p, nil
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return domain.SavedPresentation{}, err
	}
	return s.repo.FindByID(ctx, p.ID)
}

func (s *Service) Delete(ctx context.Context, id domain.PresentationID, ownerID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	return s.repo.Delete(ctx, id, ownerID)
}

// Launch abre uma enquete ao vivo com os slides do deck; o deck continua salvo.
func (s *Service) Launch(ctx context.Context, id domain.PresentationID, ownerID string) (domain.PollView, error) {
	p, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return domain.PollView{}, err
	}
	view, err := s.polls.CreatePoll(ctx, domain.CreatePollInput{Title: p.Title, Slides: p.Slides}, ownerID)
	if err != nil {
		return domain.PollView{}, err
	}
	s.log.InfoContext(ctx, "apresentacao lancada", "id", p.ID, "code", view.Code)
	return view, nil
}

func validate(p *domain.SavedPresentation) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return domain.NewValidationError("title", "titulo obrigatorio")
	}
	if len(p.Slides) == 0 {
		return domain.NewValidationError("slides", "ao menos um slide e obrigatorio")
	}
	if len(p.Slides) > polls.MaxSlides {
		return domain.NewValidationError("slides", fmt.Sprintf("no maximo %d slides", polls.MaxSlides))
	}
	for i, spec := range p.Slides {
		if err := polls.ValidateSlide(spec); err != nil {
			return fmt.Errorf("slide %d: %w", i, err)
		}
	}
	return nil
}

var _ domain.PresentationService = (*Service)(nil)
