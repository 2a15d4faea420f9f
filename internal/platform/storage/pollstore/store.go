// Pacote pollstore combina o armazenamento durável com o cache opcional. O banco é a
// fonte de verdade; o cache só acelera leituras e nunca muda o resultado observável.
package pollstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// tentativasEspelho limita as regravações quando o banco muda durante o espelhamento.
const tentativasEspelho = 3

// Durable agrupa os repositórios do banco usados pelo Store.
type Durable struct {
	Polls        domain.PollRepository
	Slides       domain.SlideRepository
	Options      domain.OptionRepository
	Votes        domain.VoteRepository
	Participants domain.ParticipantRepository
}

type Store struct {
	durable     Durable
	cache       domain.Cache
	cacheOn     bool
	clock       domain.Clock
	log         *slog.Logger
	paralelismo int
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithParallelism define quantas consultas de voto rodam em paralelo em VotedSlideIDs.
func WithParallelism(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.paralelismo = n
		}
	}
}

// New monta o Store. Um cache nulo equivale ao DisabledCache.
func New(durable Durable, cache domain.Cache, clock domain.Clock, opts ...Option) *Store {
	s := &Store{
		durable:     durable,
		cache:       cache,
		cacheOn:     true,
		clock:       clock,
		log:         slog.Default(),
		paralelismo: 8,
	}
	if cache == nil {
		s.cache = DisabledCache{}
	}
	if _, off := s.cache.(DisabledCache); off {
		s.cacheOn = false
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) CacheEnabled() bool { return s.cacheOn }

func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	return s.durable.Polls.CodeInUse(ctx, code)
}

func (s *Store) CreatePoll(ctx context.Context, poll domain.Poll, slides []domain.Slide, options []domain.Option) error {
	if err := s.durable.Polls.Create(ctx, poll, slides, options); err != nil {
		return err
	}
	s.mirrorPoll(ctx, poll)
	return nil
}

// PollByCode lê o hash do cache e, no miss, busca no banco e repovoa o cache.
func (s *Store) PollByCode(ctx context.Context, code string) (domain.Poll, error) {
	if s.cacheOn {
		h, err := s.cache.HGetAll(ctx, pollKey(code))
		switch {
		case err != nil:
			s.cacheFailure("hgetall", pollKey(code), err)
		default:
			if poll, ok := decodePoll(h); ok {
				metrics.ObserveCache("poll", "hit")
				return poll, nil
			}
			metrics.ObserveCache("poll", "miss")
		}
	}

	poll, err := s.durable.Polls.FindByCode(ctx, code)
	if err != nil {
		return domain.Poll{}, err
	}
	s.mirrorPoll(ctx, poll)
	return poll, nil
}

func (s *Store) SetActiveSlide(ctx context.Context, poll domain.Poll, slideID domain.SlideID) (domain.Poll, error) {
	if err := s.durable.Polls.SetActiveSlide(ctx, poll.ID, slideID); err != nil {
		return domain.Poll{}, err
	}
	return s.refresh(ctx, poll.Code)
}

// TransitionStatus devolve a enquete como ficou no banco, tenha a transição ocorrido ou não.
func (s *Store) TransitionStatus(ctx context.Context, poll domain.Poll, to domain.PollStatus, at time.Time) (domain.Poll, error) {
	if _, err := s.durable.Polls.TransitionStatus(ctx, poll.ID, to, at); err != nil {
		return domain.Poll{}, err
	}
	return s.refresh(ctx, poll.Code)
}

func (s *Store) Archive(ctx context.Context, poll domain.Poll, at time.Time) error {
	slides, err := s.durable.Slides.ListByPoll(ctx, poll.ID)
	if err != nil {
		return err
	}
	if err := s.durable.Polls.Archive(ctx, poll.ID, at); err != nil {
		return err
	}
	s.purge(ctx, poll.Code, slides)
	return nil
}

func (s *Store) Delete(ctx context.Context, poll domain.Poll) error {
	slides, err := s.durable.Slides.ListByPoll(ctx, poll.ID)
	if err != nil {
		return err
	}
	if err := s.durable.Polls.Delete(ctx, poll.ID); err != nil {
		return err
	}
	s.purge(ctx, poll.Code, slides)
	return nil
}

// Slides devolve os slides em ordem. O cache guarda apenas a lista, sem opções nem contagens.
func (s *Store) Slides(ctx context.Context, poll domain.Poll) ([]domain.Slide, error) {
	if s.cacheOn {
		raw, ok, err := s.cache.Get(ctx, slidesKey(poll.Code))
		switch {
		case err != nil:
			s.cacheFailure("get", slidesKey(poll.Code), err)
		case ok:
			var slides []domain.Slide
			if jsonErr := json.Unmarshal([]byte(raw), &slides); jsonErr == nil {
				metrics.ObserveCache("slides", "hit")
				return slides, nil
			}
			s.drop(ctx, slidesKey(poll.Code))
		default:
			metrics.ObserveCache("slides", "miss")
		}
	}

	slides, err := s.durable.Slides.ListByPoll(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	s.mirrorSlides(ctx, poll, slides)
	return slides, nil
}

func (s *Store) AppendSlide(ctx context.Context, poll domain.Poll, slide domain.Slide, options []domain.Option) (domain.Slide, error) {
	criado, err := s.durable.Slides.Append(ctx, slide, options)
	if err != nil {
		return domain.Slide{}, err
	}
	s.drop(ctx, slidesKey(poll.Code))
	if _, err := s.Slides(ctx, poll); err != nil {
		s.log.WarnContext(ctx, "pollstore: falha ao repovoar slides", "code", poll.Code, "error", err)
	}
	return criado, nil
}

// Options sempre vem do banco: as contagens mudam a cada voto.
func (s *Store) Options(ctx context.Context, slideIDs []domain.SlideID) ([]domain.Option, error) {
	return s.durable.Options.ListBySlides(ctx, slideIDs)
}

func (s *Store) Option(ctx context.Context, id domain.OptionID) (domain.Option, error) {
	return s.durable.Options.FindByID(ctx, id)
}

// List atende listagens administrativas e varreduras; sempre consulta o banco.
func (s *Store) List(ctx context.Context, filter domain.PollFilter) ([]domain.PollSummary, error) {
	return s.durable.Polls.List(ctx, filter)
}

// refresh relê a enquete do banco após uma mutação e espelha o valor lido.
func (s *Store) refresh(ctx context.Context, code string) (domain.Poll, error) {
	poll, err := s.durable.Polls.FindByCode(ctx, code)
	if err != nil {
		return domain.Poll{}, err
	}
	s.mirrorPoll(ctx, poll)
	return poll, nil
}

// mirrorPoll grava o hash e confere com o banco. Se outro escritor mudou a enquete no
// meio do caminho, regrava com o valor mais recente; esgotadas as tentativas, remove a
// chave para que a próxima leitura busque no banco.
func (s *Store) mirrorPoll(ctx context.Context, poll domain.Poll) {
	if !s.cacheOn {
		return
	}
	key := pollKey(poll.Code)
	atual := poll
	for tentativa := 0; tentativa < tentativasEspelho; tentativa++ {
		ttl := s.ttl(atual)
		if ttl <= 0 || atual.ArchivedAt != nil {
			s.drop(ctx, key)
			return
		}
		if err := s.cache.ReplaceHash(ctx, key, encodePoll(atual), ttl); err != nil {
			s.cacheFailure("hset", key, err)
			s.drop(ctx, key)
			return
		}

		fresco, err := s.durable.Polls.FindByCode(ctx, atual.Code)
		if err != nil {
			if !domain.IsNotFound(err) {
				s.log.WarnContext(ctx, "pollstore: falha ao conferir espelho", "key", key, "error", err)
			}
			s.drop(ctx, key)
			return
		}
		if samePoll(fresco, atual) {
			metrics.ObserveCache("mirror", "ok")
			return
		}
		atual = fresco
	}
	metrics.ObserveCache("mirror", "exhausted")
	s.drop(ctx, key)
}

// mirrorSlides segue a mesma conferência do mirrorPoll para a lista de slides.
func (s *Store) mirrorSlides(ctx context.Context, poll domain.Poll, slides []domain.Slide) {
	if !s.cacheOn {
		return
	}
	key := slidesKey(poll.Code)
	atual := slides
	for tentativa := 0; tentativa < tentativasEspelho; tentativa++ {
		ttl := s.ttl(poll)
		if ttl <= 0 {
			return
		}
		raw, err := json.Marshal(atual)
		if err != nil {
			s.drop(ctx, key)
			return
		}
		if err := s.cache.Set(ctx, key, string(raw), ttl); err != nil {
			s.cacheFailure("set", key, err)
			s.drop(ctx, key)
			return
		}

		fresco, err := s.durable.Slides.ListByPoll(ctx, poll.ID)
		if err != nil {
			s.drop(ctx, key)
			return
		}
		if slices.EqualFunc(fresco, atual, func(a, b domain.Slide) bool {
			return a.ID == b.ID && a.OrderIndex == b.OrderIndex
		}) {
			return
		}
		atual = fresco
	}
	s.drop(ctx, key)
}

// purge remove todas as chaves da enquete, inclusive os conjuntos de cada slide.
const purgeAttempts = 3

func (s *Store) purge(ctx context.Context, code string, slides []domain.Slide) {
	if !s.cacheOn {
		return
	}
	keys := []string{pollKey(code), slidesKey(code)}
	for _, sl := range slides {
		keys = append(keys, votersKey(code, sl.ID), participantsKey(code, sl.ID))
	}
	// Uma chave que sobrevive aqui continuaria servindo a enquete arquivada até o TTL.
	for tentativa := 1; tentativa <= purgeAttempts; tentativa++ {
		err := s.cache.Del(ctx, keys...)
		if err == nil {
			return
		}
		s.cacheFailure("del", pollKey(code), err)
		if ctx.Err() != nil {
			return
		}
	}
	s.log.Error("pollstore: chaves da enquete ficaram no cache", "code", code, "tentativas", purgeAttempts)
}

// ttl nunca ultrapassa a expiração da enquete.
func (s *Store) ttl(poll domain.Poll) time.Duration {
	return poll.ExpiresAt.Sub(s.clock.Agora())
}

func (s *Store) drop(ctx context.Context, key string) {
	if err := s.cache.Del(ctx, key); err != nil {
		s.cacheFailure("del", key, err)
	}
}

func (s *Store) cacheFailure(op, key string, err error) {
	metrics.ObserveCache(op, "error")
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Warn("pollstore: falha no cache, seguindo pelo banco", "op", op, "key", key, "error", err)
}

var _ domain.PollStore = (*Store)(nil)
