// Pacote voting implementa o motor de votação: deduplicação por votante, incremento
// atômico das opções, participantes por slide e leitura de resultados.
package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/marcelojr/enquetes/internal/app/realtime"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// PollResolver devolve a enquete viva já com a expiração preguiçosa aplicada.
type PollResolver interface {
	Resolve(ctx context.Context, code string) (domain.Poll, error)
}

// Service concentra as regras de votação e delega o acesso ao PollStore.
type Service struct {
	polls      PollResolver
	store      domain.PollStore
	notifier   domain.Notifier
	antifraude domain.Antifraude
	clock      domain.Clock
	ids        *ids.Generator
	log        *slog.Logger
}

func NewService(
	polls PollResolver,
	store domain.PollStore,
	notifier domain.Notifier,
	antifraude domain.Antifraude,
	clock domain.Clock,
	idsGen *ids.Generator,
	log *slog.Logger,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		polls:      polls,
		store:      store,
		notifier:   notifier,
		antifraude: antifraude,
		clock:      clock,
		ids:        idsGen,
		log:        log,
	}
}

// SubmitVote valida, deduplica e grava o voto. O voto só é aceito em enquetes ativas.
func (s *Service) SubmitVote(ctx context.Context, req domain.VoteRequest) (receipt domain.VoteReceipt, err error) {
	inicio := time.Now()
	defer func() {
		metrics.ObserveProcessingDuration(time.Since(inicio).Seconds())
		metrics.ObserveVoteRequest(voteOutcome(err))
	}()

	if req.Ballot == nil {
		return domain.VoteReceipt{}, domain.NewValidationError("vote", "option_id ou text obrigatorio")
	}
	if !ids.ValidVoterToken(req.VoterToken) {
		return domain.VoteReceipt{}, domain.NewValidationError("voter_token", "sessao de votante invalida")
	}

	if s.antifraude != nil {
		if err := s.antifraude.Validar(ctx, domain.VoteAttempt{
			Code:       req.Code,
			VoterToken: req.VoterToken,
			OriginIP:   req.OriginIP,
			UserAgent:  req.UserAgent,
		}); err != nil {
			return domain.VoteReceipt{}, err
		}
	}

	poll, err := s.polls.Resolve(ctx, req.Code)
	if err != nil {
		return domain.VoteReceipt{}, err
	}
	if poll.Status != domain.PollStatusActive {
		return domain.VoteReceipt{}, domain.ErrPollClosed
	}

	slides, err := s.store.Slides(ctx, poll)
	if err != nil {
		return domain.VoteReceipt{}, err
	}

	agora := s.clock.Agora().UTC().Truncate(time.Microsecond)
	vote := domain.Vote{
		ID:         domain.VoteID(s.ids.New()),
		PollID:     poll.ID,
		VoterToken: req.VoterToken,
		OriginIP:   req.OriginIP,
		UserAgent:  req.UserAgent,
		CreatedAt:  agora,
	}

	var (
		slide     domain.Slide
		newOption *domain.Option
	)
	switch b := req.Ballot.(type) {
	case domain.QuizVote:
		option, err := s.store.Option(ctx, b.OptionID)
		if err != nil {
			return domain.VoteReceipt{}, err
		}
		sl, ok := findSlide(slides, option.SlideID)
		if !ok {
			return domain.VoteReceipt{}, domain.NewNotFoundError("opcao", string(b.OptionID))
		}
		// Palavras da nuvem também são opções, mas só recebem voto por texto.
		if sl.Type != b.SlideType() {
			return domain.VoteReceipt{}, domain.NewValidationError("option_id", "a opcao nao pertence a um quiz")
		}
		slide = sl
		vote.OptionID = option.ID
	case domain.WordCloudVote:
		sl, ok := findSlide(slides, poll.ActiveSlideID)
		if !ok || sl.Type != domain.SlideTypeWordCloud {
			return domain.VoteReceipt{}, domain.NewValidationError("text", "o slide ativo nao e uma nuvem de palavras")
		}
		slide = sl
		normalizado := b.Normalized()
		newOption = &domain.Option{
			ID:             domain.OptionID(s.ids.New()),
			SlideID:        sl.ID,
			Text:           b.Display(),
			Color:          domain.RandomColor(),
			NormalizedText: &normalizado,
			CreatedAt:      agora,
		}
	default:
		return domain.VoteReceipt{}, domain.NewValidationError("vote", "tipo de voto desconhecido")
	}
	vote.SlideID = slide.ID

	// Caminho rápido; a restrição única no banco continua sendo a garantia final.
	votou, err := s.store.HasVoted(ctx, poll, slide.ID, req.VoterToken)
	if err != nil {
		return domain.VoteReceipt{}, err
	}
	if votou {
		return domain.VoteReceipt{}, domain.ErrAlreadyVoted
	}

	option, err := s.store.RecordVote(ctx, poll, vote, newOption)
	if err != nil {
		return domain.VoteReceipt{}, err
	}
	metrics.IncVoteApplied(string(slide.Type))

	s.publishSlide(ctx, poll, slide)
	return domain.VoteReceipt{SlideID: slide.ID, Option: option}, nil
}

// TrackParticipant registra que o votante abriu o slide; repetir não conta de novo.
func (s *Service) TrackParticipant(ctx context.Context, code string, slideID domain.SlideID, voterToken string) error {
	if !ids.ValidVoterToken(voterToken) {
		return domain.NewValidationError("voter_token", "sessao de votante invalida")
	}
	poll, slide, err := s.resolveSlide(ctx, code, slideID)
	if err != nil {
		return err
	}
	return s.store.AddParticipant(ctx, poll, slide.ID, voterToken)
}

// GetVotedSlideIDs devolve em quais slides o votante já votou. Sem slides informados,
// considera todos os slides da enquete.
func (s *Service) GetVotedSlideIDs(ctx context.Context, code string, slideIDs []domain.SlideID, voterToken string) ([]domain.SlideID, error) {
	poll, err := s.polls.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	if !ids.ValidVoterToken(voterToken) {
		return []domain.SlideID{}, nil
	}
	if len(slideIDs) == 0 {
		slides, err := s.store.Slides(ctx, poll)
		if err != nil {
			return nil, err
		}
		for _, sl := range slides {
			slideIDs = append(slideIDs, sl.ID)
		}
	}
	return s.store.VotedSlideIDs(ctx, poll, slideIDs, voterToken)
}

// GetVoteResults calcula percentuais sobre o total do slide; com total zero, tudo é zero.
func (s *Service) GetVoteResults(ctx context.Context, code string, slideID domain.SlideID) (domain.VoteResults, error) {
	poll, slide, err := s.resolveSlide(ctx, code, slideID)
	if err != nil {
		return domain.VoteResults{}, err
	}

	options, err := s.store.Options(ctx, []domain.SlideID{slide.ID})
	if err != nil {
		return domain.VoteResults{}, err
	}
	participantes, err := s.store.CountParticipants(ctx, poll, slide.ID)
	if err != nil {
		return domain.VoteResults{}, err
	}

	var total int64
	for _, o := range options {
		total += o.VoteCount
	}

	resultado := domain.VoteResults{
		SlideID:          slide.ID,
		Options:          make([]domain.OptionResult, len(options)),
		TotalVotes:       total,
		ParticipantCount: participantes,
	}
	for i, o := range options {
		var percentual float64
		if total > 0 {
			percentual = (float64(o.VoteCount) / float64(total)) * 100
		}
		resultado.Options[i] = domain.OptionResult{
			OptionID:   o.ID,
			Text:       o.Text,
			Color:      o.Color,
			Votes:      o.VoteCount,
			Percentage: percentual,
		}
	}
	return resultado, nil
}

func (s *Service) resolveSlide(ctx context.Context, code string, slideID domain.SlideID) (domain.Poll, domain.Slide, error) {
	poll, err := s.polls.Resolve(ctx, code)
	if err != nil {
		return domain.Poll{}, domain.Slide{}, err
	}
	slides, err := s.store.Slides(ctx, poll)
	if err != nil {
		return domain.Poll{}, domain.Slide{}, err
	}
	slide, ok := findSlide(slides, slideID)
	if !ok {
		return domain.Poll{}, domain.Slide{}, domain.NewNotFoundError("slide", string(slideID))
	}
	return poll, slide, nil
}

func (s *Service) publishSlide(ctx context.Context, poll domain.Poll, slide domain.Slide) {
	options, err := s.store.Options(ctx, []domain.SlideID{slide.ID})
	if err != nil {
		s.log.WarnContext(ctx, "falha ao montar snapshot do voto", "code", poll.Code, "error", err)
		return
	}
	if options == nil {
		options = []domain.Option{}
	}
	s.notifier.VoteUpdated(ctx, realtime.SlideSnapshot(poll, domain.SlideView{Slide: slide, Options: options}))
}

func findSlide(slides []domain.Slide, id domain.SlideID) (domain.Slide, bool) {
	for _, sl := range slides {
		if sl.ID == id {
			return sl, true
		}
	}
	return domain.Slide{}, false
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrPollClosed):
		return "closed"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

var _ domain.VotingService = (*Service)(nil)
