// Pacote polls é o gerenciador do ciclo de vida das enquetes: criação, slide ativo,
// status, expiração preguiçosa, arquivamento e exclusão.
package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marcelojr/enquetes/internal/app/realtime"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

const defaultTitle = "Untitled Poll"

// MaxSlides limita o tamanho de uma enquete criada de uma vez.
const MaxSlides = 50

// Settings traz a política de códigos e de expiração lida da configuração.
type Settings struct {
	CodeLength      int
	CodeMaxAttempts int
	TTL             time.Duration
	AnonymousTTL    time.Duration
}

type Service struct {
	store    domain.PollStore
	notifier domain.Notifier
	clock    domain.Clock
	codes    *ids.CodeGenerator
	ids      *ids.Generator
	settings Settings
	log      *slog.Logger
}

func NewService(
	store domain.PollStore,
	notifier domain.Notifier,
	clock domain.Clock,
	codes *ids.CodeGenerator,
	idsGen *ids.Generator,
	settings Settings,
	log *slog.Logger,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if settings.CodeLength <= 0 {
		settings.CodeLength = 4
	}
	if codes == nil {
		codes = ids.NewCodeGenerator(settings.CodeLength)
	}
	if settings.CodeMaxAttempts <= 0 {
		settings.CodeMaxAttempts = 10
	}
	if settings.TTL <= 0 {
		settings.TTL = 24 * time.Hour
	}
	if settings.AnonymousTTL <= 0 {
		settings.AnonymousTTL = 3 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		clock:    clock,
		codes:    codes,
		ids:      idsGen,
		settings: settings,
		log:      log,
	}
}

// CreatePoll valida tudo antes de gravar; o primeiro slide nasce ativo.
func (s *Service) CreatePoll(ctx context.Context, in domain.CreatePollInput, presenterID string) (domain.PollView, error) {
	if len(in.Slides) == 0 {
		return domain.PollView{}, domain.NewValidationError("slides", "ao menos um slide e obrigatorio")
	}
	if len(in.Slides) > MaxSlides {
		return domain.PollView{}, domain.NewValidationError("slides", fmt.Sprintf("no maximo %d slides", MaxSlides))
	}
	for i, spec := range in.Slides {
		if err := ValidateSlide(spec); err != nil {
			return domain.PollView{}, fmt.Errorf("slide %d: %w", i, err)
		}
	}

	agora := s.agora()
	ttl := s.settings.TTL
	if presenterID == "" {
		ttl = s.settings.AnonymousTTL
	}

	poll := domain.Poll{
		ID:          domain.PollID(ids.NewUUID()),
		Title:       pollTitle(in),
		PresenterID: presenterID,
		Status:      domain.PollStatusActive,
		CreatedAt:   agora,
		ExpiresAt:   agora.Add(ttl),
	}

	var (
		slides  []domain.Slide
		options []domain.Option
		views   []domain.SlideView
	)
	for i, spec := range in.Slides {
		slide, opts := s.buildSlide(poll.ID, i, spec, agora)
		slides = append(slides, slide)
		options = append(options, opts...)
		views = append(views, domain.SlideView{Slide: slide, Options: nonNil(opts)})
	}
	poll.ActiveSlideID = slides[0].ID

	code, err := s.reserveCode(ctx, func(code string) error {
		poll.Code = code
		return s.store.CreatePoll(ctx, poll, slides, options)
	})
	if err != nil {
		return domain.PollView{}, err
	}
	poll.Code = code

	metrics.IncLifecycle("create")
	s.log.InfoContext(ctx, "enquete criada", "code", poll.Code, "slides", len(slides), "anonima", poll.Anonymous())

	view := domain.PollView{Poll: poll, Slides: views}
	s.notifier.PollUpdated(ctx, realtime.SnapshotOf(view))
	return view, nil
}

// reserveCode sorteia códigos até um ficar livre. Uma corrida perdida no insert
// (ErrCodeInUse) conta como colisão e gera nova tentativa.
func (s *Service) reserveCode(ctx context.Context, create func(code string) error) (string, error) {
	for tentativa := 0; tentativa < s.settings.CodeMaxAttempts; tentativa++ {
		code := s.codes.Next()

		emUso, err := s.store.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if emUso {
			continue
		}

		err = create(code)
		if errors.Is(err, domain.ErrCodeInUse) {
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	metrics.IncLifecycle("code_exhausted")
	return "", fmt.Errorf("%w: %d tentativas", domain.ErrCollisionExhausted, s.settings.CodeMaxAttempts)
}

func (s *Service) GetPoll(ctx context.Context, code string) (domain.PollView, error) {
	poll, err := s.Resolve(ctx, code)
	if err != nil {
		return domain.PollView{}, err
	}
	return s.view(ctx, poll)
}

// Resolve busca a enquete viva pelo código aplicando a expiração preguiçosa: uma
// enquete ativa com prazo vencido vira "expired" no banco (e no cache) antes de voltar.
func (s *Service) Resolve(ctx context.Context, code string) (domain.Poll, error) {
	if err := s.validateCode(code); err != nil {
		return domain.Poll{}, err
	}
	poll, err := s.store.PollByCode(ctx, code)
	if err != nil {
		return domain.Poll{}, err
	}

	agora := s.agora()
	if !poll.OverdueAt(agora) {
		return poll, nil
	}

	poll, err = s.store.TransitionStatus(ctx, poll, domain.PollStatusExpired, agora)
	if err != nil {
		return domain.Poll{}, err
	}
	metrics.IncLifecycle("expire")
	s.log.InfoContext(ctx, "enquete expirada na leitura", "code", code)
	s.publish(ctx, poll)
	return poll, nil
}

func (s *Service) UpdateActiveSlide(ctx context.Context, code string, slideID domain.SlideID, presenterID string) (domain.PollView, error) {
	poll, err := s.Resolve(ctx, code)
	if err != nil {
		return domain.PollView{}, err
	}
	if err := authorize(poll, presenterID); err != nil {
		return domain.PollView{}, err
	}

	slides, err := s.store.Slides(ctx, poll)
	if err != nil {
		return domain.PollView{}, err
	}
	if !containsSlide(slides, slideID) {
		return domain.PollView{}, domain.NewNotFoundError("slide", string(slideID))
	}

	poll, err = s.store.SetActiveSlide(ctx, poll, slideID)
	if err != nil {
		return domain.PollView{}, err
	}
	metrics.IncLifecycle("active_slide")
	return s.viewAndPublish(ctx, poll)
}

// UpdatePollStatus aceita apenas transições a partir de "active". Repetir o status atual é
// idempotente; qualquer outra mudança numa enquete encerrada é rejeitada.
func (s *Service) UpdatePollStatus(ctx context.Context, code string, status domain.PollStatus, presenterID string) (domain.PollView, error) {
	if !status.Valid() {
		return domain.PollView{}, domain.NewValidationError("status", "status invalido")
	}
	poll, err := s.Resolve(ctx, code)
	if err != nil {
		return domain.PollView{}, err
	}
	if err := authorize(poll, presenterID); err != nil {
		return domain.PollView{}, err
	}

	if poll.Status == status {
		return s.view(ctx, poll)
	}
	if poll.Status != domain.PollStatusActive {
		return domain.PollView{}, domain.NewValidationError("status", fmt.Sprintf("enquete %s nao pode voltar para %s", poll.Status, status))
	}

	poll, err = s.store.TransitionStatus(ctx, poll, status, s.agora())
	if err != nil {
		return domain.PollView{}, err
	}
	if poll.Status != status {
		return domain.PollView{}, domain.NewValidationError("status", fmt.Sprintf("enquete ja esta %s", poll.Status))
	}
	metrics.IncLifecycle("status_" + string(status))
	return s.viewAndPublish(ctx, poll)
}

func (s *Service) CompletePoll(ctx context.Context, code, presenterID string) (domain.PollView, error) {
	return s.UpdatePollStatus(ctx, code, domain.PollStatusCompleted, presenterID)
}

// ArchivePoll esconde a enquete de toda leitura por código; a linha continua no banco.
func (s *Service) ArchivePoll(ctx context.Context, code, presenterID string) error {
	poll, err := s.Resolve(ctx, code)
	if err != nil {
		return err
	}
	if err := authorize(poll, presenterID); err != nil {
		return err
	}
	if err := s.store.Archive(ctx, poll, s.agora()); err != nil {
		return err
	}
	metrics.IncLifecycle("archive")
	s.log.InfoContext(ctx, "enquete arquivada", "code", code)
	return nil
}

func (s *Service) DeletePoll(ctx context.Context, code, presenterID string) error {
	if err := s.validateCode(code); err != nil {
		return err
	}
	poll, err := s.store.PollByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := authorize(poll, presenterID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, poll); err != nil {
		return err
	}
	metrics.IncLifecycle("delete")
	s.log.InfoContext(ctx, "enquete excluida", "code", code)
	return nil
}

// AddSlideToPoll anexa o slide ao final e, se pedido, já o torna o slide ativo.
func (s *Service) AddSlideToPoll(ctx context.Context, code string, in domain.AddSlideInput, presenterID string) (domain.PollView, error) {
	if err := ValidateSlide(in.SlideSpec); err != nil {
		return domain.PollView{}, err
	}
	poll, err := s.Resolve(ctx, code)
	if err != nil {
		return domain.PollView{}, err
	}
	if err := authorize(poll, presenterID); err != nil {
		return domain.PollView{}, err
	}

	slide, options := s.buildSlide(poll.ID, 0, in.SlideSpec, s.agora())
	criado, err := s.store.AppendSlide(ctx, poll, slide, options)
	if err != nil {
		return domain.PollView{}, err
	}
	metrics.IncLifecycle("add_slide")

	if in.Activate {
		poll, err = s.store.SetActiveSlide(ctx, poll, criado.ID)
		if err != nil {
			return domain.PollView{}, err
		}
	}
	return s.viewAndPublish(ctx, poll)
}

// ListByPresenter lista as enquetes vivas do apresentador, mais recentes primeiro.
func (s *Service) ListByPresenter(ctx context.Context, presenterID string) ([]domain.PollSummary, error) {
	if presenterID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.store.List(ctx, domain.PollFilter{PresenterID: presenterID, Limit: 100})
}

// Snapshot devolve o snapshot completo usado pela consulta periódica do stream.
func (s *Service) Snapshot(ctx context.Context, code string) (domain.Snapshot, error) {
	view, err := s.GetPoll(ctx, code)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return realtime.SnapshotOf(view), nil
}

func (s *Service) view(ctx context.Context, poll domain.Poll) (domain.PollView, error) {
	slides, err := s.store.Slides(ctx, poll)
	if err != nil {
		return domain.PollView{}, err
	}
	return assembleView(ctx, s.store, poll, slides)
}

func (s *Service) viewAndPublish(ctx context.Context, poll domain.Poll) (domain.PollView, error) {
	view, err := s.view(ctx, poll)
	if err != nil {
		return domain.PollView{}, err
	}
	s.notifier.PollUpdated(ctx, realtime.SnapshotOf(view))
	return view, nil
}

func (s *Service) publish(ctx context.Context, poll domain.Poll) {
	view, err := s.view(ctx, poll)
	if err != nil {
		s.log.WarnContext(ctx, "falha ao montar snapshot", "code", poll.Code, "error", err)
		return
	}
	s.notifier.PollUpdated(ctx, realtime.SnapshotOf(view))
}

func (s *Service) buildSlide(pollID domain.PollID, ordem int, spec domain.SlideSpec, agora time.Time) (domain.Slide, []domain.Option) {
	slide := domain.Slide{
		ID:         domain.SlideID(s.ids.New()),
		PollID:     pollID,
		Type:       spec.Type,
		Question:   strings.TrimSpace(spec.Question),
		OrderIndex: ordem,
		Style:      spec.Style,
		CreatedAt:  agora,
	}
	if slide.Style == "" {
		slide.Style = spec.Type.DefaultStyle()
	}

	var options []domain.Option
	vistos := make(map[string]bool)
	for _, texto := range spec.Options {
		texto = strings.TrimSpace(texto)
		if texto == "" {
			continue
		}
		opt := domain.Option{
			ID:        domain.OptionID(s.ids.New()),
			SlideID:   slide.ID,
			Text:      texto,
			Position:  len(options),
			CreatedAt: agora,
		}
		if spec.Type == domain.SlideTypeWordCloud {
			normalizado := domain.NormalizeWord(texto)
			if vistos[normalizado] {
				continue
			}
			vistos[normalizado] = true
			opt.NormalizedText = &normalizado
			opt.Color = domain.RandomColor()
		} else {
			opt.Color = domain.PaletteColor(len(options))
		}
		options = append(options, opt)
	}
	return slide, options
}

func (s *Service) validateCode(code string) error {
	if !ids.ValidCode(code, s.settings.CodeLength) {
		return domain.NewValidationError("code", fmt.Sprintf("codigo deve ter %d digitos", s.settings.CodeLength))
	}
	return nil
}

// agora trunca em microssegundos, a precisão do Postgres, para que o espelho do
// cache compare igual ao que o banco devolve.
func (s *Service) agora() time.Time {
	return s.clock.Agora().UTC().Truncate(time.Microsecond)
}

var _ domain.PollService = (*Service)(nil)
