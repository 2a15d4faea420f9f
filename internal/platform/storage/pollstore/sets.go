package pollstore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// HasVoted consulta o conjunto de votantes quando ele existe no cache; sem a chave,
// o banco responde.
func (s *Store) HasVoted(ctx context.Context, poll domain.Poll, slideID domain.SlideID, voterToken string) (bool, error) {
	if s.cacheOn {
		key := votersKey(poll.Code, slideID)
		if ok, answered := s.memberOf(ctx, key, voterToken); answered {
			return ok, nil
		}
	}
	return s.durable.Votes.HasVoted(ctx, slideID, voterToken)
}

// VotedSlideIDs verifica os slides em paralelo e preserva a ordem de entrada.
func (s *Store) VotedSlideIDs(ctx context.Context, poll domain.Poll, slideIDs []domain.SlideID, voterToken string) ([]domain.SlideID, error) {
	votou := make([]bool, len(slideIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.paralelismo)
	for i, id := range slideIDs {
		g.Go(func() error {
			ok, err := s.HasVoted(gctx, poll, id, voterToken)
			if err != nil {
				return err
			}
			votou[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]domain.SlideID, 0, len(slideIDs))
	for i, id := range slideIDs {
		if votou[i] {
			result = append(result, id)
		}
	}
	return result, nil
}

// RecordVote grava no banco (voto e incremento na mesma transação) e só depois
// acrescenta o token ao conjunto de votantes. Quem vota também passa a contar como
// participante do slide.
func (s *Store) RecordVote(ctx context.Context, poll domain.Poll, vote domain.Vote, newOption *domain.Option) (domain.Option, error) {
	option, err := s.durable.Votes.Record(ctx, vote, newOption)
	if err != nil {
		return domain.Option{}, err
	}
	s.addMember(ctx, poll, votersKey(poll.Code, vote.SlideID), vote.VoterToken, func(ctx context.Context) ([]string, error) {
		return s.durable.Votes.ListVoters(ctx, vote.SlideID)
	})
	// O voto já está gravado; falhar aqui só deixaria a contagem de participantes atrasada.
	if err := s.AddParticipant(ctx, poll, vote.SlideID, vote.VoterToken); err != nil {
		s.log.Warn("pollstore: falha ao registrar participante do voto", "slide_id", vote.SlideID, "error", err)
	}
	return option, nil
}

func (s *Store) AddParticipant(ctx context.Context, poll domain.Poll, slideID domain.SlideID, voterToken string) error {
	if err := s.durable.Participants.Add(ctx, domain.Participant{
		SlideID:    slideID,
		VoterToken: voterToken,
		PollID:     poll.ID,
		JoinedAt:   s.clock.Agora(),
	}); err != nil {
		return err
	}
	s.addMember(ctx, poll, participantsKey(poll.Code, slideID), voterToken, func(ctx context.Context) ([]string, error) {
		return s.durable.Participants.ListTokens(ctx, slideID)
	})
	return nil
}

// CountParticipants usa SCARD quando o conjunto existe. No miss conta no banco e
// recria o conjunto a partir das linhas duráveis.
func (s *Store) CountParticipants(ctx context.Context, poll domain.Poll, slideID domain.SlideID) (int64, error) {
	key := participantsKey(poll.Code, slideID)
	if s.cacheOn {
		existe, err := s.cache.Exists(ctx, key)
		if err != nil {
			s.cacheFailure("exists", key, err)
		} else if existe {
			total, err := s.cache.SCard(ctx, key)
			if err == nil {
				metrics.ObserveCache("participants", "hit")
				return total, nil
			}
			s.cacheFailure("scard", key, err)
		}
	}

	total, err := s.durable.Participants.Count(ctx, slideID)
	if err != nil {
		return 0, err
	}
	if s.cacheOn && total > 0 {
		if tokens, err := s.durable.Participants.ListTokens(ctx, slideID); err == nil {
			s.seed(ctx, poll, key, tokens)
		}
	}
	return total, nil
}

// memberOf devolve answered=false quando o cache não pode responder com segurança.
func (s *Store) memberOf(ctx context.Context, key, member string) (ok, answered bool) {
	existe, err := s.cache.Exists(ctx, key)
	if err != nil {
		s.cacheFailure("exists", key, err)
		return false, false
	}
	if !existe {
		metrics.ObserveCache("voters", "miss")
		return false, false
	}
	ok, err = s.cache.SIsMember(ctx, key, member)
	if err != nil {
		s.cacheFailure("sismember", key, err)
		return false, false
	}
	metrics.ObserveCache("voters", "hit")
	return ok, true
}

// addMember acrescenta o token ao conjunto. Se a chave não existe, o conjunto é
// semeado com todos os membros do banco para nunca ficar incompleto.
func (s *Store) addMember(ctx context.Context, poll domain.Poll, key, member string, load func(context.Context) ([]string, error)) {
	if !s.cacheOn {
		return
	}
	existe, err := s.cache.Exists(ctx, key)
	if err != nil {
		s.cacheFailure("exists", key, err)
		s.drop(ctx, key)
		return
	}

	membros := []string{member}
	if !existe {
		duraveis, err := load(ctx)
		if err != nil {
			s.log.WarnContext(ctx, "pollstore: falha ao semear conjunto", "key", key, "error", err)
			s.drop(ctx, key)
			return
		}
		membros = append(duraveis, member)
	}
	s.seed(ctx, poll, key, membros)
}

func (s *Store) seed(ctx context.Context, poll domain.Poll, key string, membros []string) {
	ttl := s.ttl(poll)
	if ttl <= 0 {
		return
	}
	if err := s.cache.SAdd(ctx, key, membros...); err != nil {
		s.cacheFailure("sadd", key, err)
		s.drop(ctx, key)
		return
	}
	if err := s.cache.Expire(ctx, key, ttl); err != nil {
		s.cacheFailure("expire", key, err)
		s.drop(ctx, key)
	}
}
