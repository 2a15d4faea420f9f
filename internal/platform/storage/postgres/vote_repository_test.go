package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
)

func novoVoto(f fixture, slideID domain.SlideID, optionID domain.OptionID, token string) domain.Vote {
	return domain.Vote{
		ID:         domain.VoteID(ids.NewULID()),
		PollID:     f.poll.ID,
		SlideID:    slideID,
		OptionID:   optionID,
		VoterToken: token,
		OriginIP:   "192.168.1.100",
		UserAgent:  "Mozilla/5.0",
		CreatedAt:  time.Now(),
	}
}

func novaPalavra(f fixture, texto string) *domain.Option {
	normalizado := domain.NormalizeWord(texto)
	return &domain.Option{
		ID:             domain.OptionID(ids.NewULID()),
		SlideID:        f.cloud.ID,
		Text:           texto,
		Color:          "#123456",
		NormalizedText: &normalizado,
		CreatedAt:      time.Now(),
	}
}

func TestVoteRepository_Record_QuandoValido_DeveIncrementarOpcao(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	// Act
	opcao, err := repo.Record(ctx, novoVoto(f, f.quiz.ID, f.quizOpts[0].ID, ids.NewVoterToken()), nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, f.quizOpts[0].ID, opcao.ID)
	assert.Equal(t, int64(1), opcao.VoteCount)
}

func TestVoteRepository_Record_QuandoMesmoToken_DeveRetornarAlreadyVotedSemIncrementar(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	options := NewOptionRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")
	token := ids.NewVoterToken()

	// Arrange
	_, err := repo.Record(ctx, novoVoto(f, f.quiz.ID, f.quizOpts[0].ID, token), nil)
	require.NoError(t, err)

	// Act
	_, err = repo.Record(ctx, novoVoto(f, f.quiz.ID, f.quizOpts[1].ID, token), nil)

	// Assert
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	segunda, err := options.FindByID(ctx, f.quizOpts[1].ID)
	require.NoError(t, err)
	assert.Zero(t, segunda.VoteCount)
}

func TestVoteRepository_Record_QuandoOpcaoDeOutroSlide_DeveRetornarNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	_, err := repo.Record(ctx, novoVoto(f, f.cloud.ID, f.quizOpts[0].ID, ids.NewVoterToken()), nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	votou, err := repo.HasVoted(ctx, f.cloud.ID, "qualquer")
	require.NoError(t, err)
	assert.False(t, votou)
}

func TestVoteRepository_Record_QuandoPalavraRepetida_DeveReaproveitarOpcao(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	options := NewOptionRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	// Act
	primeira, err := repo.Record(ctx, novoVoto(f, f.cloud.ID, "", ids.NewVoterToken()), novaPalavra(f, "Great"))
	require.NoError(t, err)
	segunda, err := repo.Record(ctx, novoVoto(f, f.cloud.ID, "", ids.NewVoterToken()), novaPalavra(f, "  great "))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, primeira.ID, segunda.ID)
	assert.Equal(t, "Great", segunda.Text)
	assert.Equal(t, int64(2), segunda.VoteCount)

	lista, err := options.ListBySlides(ctx, []domain.SlideID{f.cloud.ID})
	require.NoError(t, err)
	assert.Len(t, lista, 1)
}

func TestVoteRepository_Record_QuandoPalavraDeVotanteRepetido_NaoDeveCriarOpcao(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	options := NewOptionRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")
	token := ids.NewVoterToken()

	_, err := repo.Record(ctx, novoVoto(f, f.cloud.ID, "", token), novaPalavra(f, "alpha"))
	require.NoError(t, err)

	// Act
	_, err = repo.Record(ctx, novoVoto(f, f.cloud.ID, "", token), novaPalavra(f, "beta"))

	// Assert
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	lista, err := options.ListBySlides(ctx, []domain.SlideID{f.cloud.ID})
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, "alpha", lista[0].Text)
}

func TestVoteRepository_Record_QuandoConcorrente_DeveContarTodos(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	options := NewOptionRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	const votantes = 20
	var wg sync.WaitGroup
	erros := make(chan error, votantes)

	// Act
	for i := 0; i < votantes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Record(ctx, novoVoto(f, f.quiz.ID, f.quizOpts[0].ID, ids.NewVoterToken()), nil)
			erros <- err
		}()
	}
	wg.Wait()
	close(erros)

	// Assert
	for err := range erros {
		assert.NoError(t, err)
	}
	opcao, err := options.FindByID(ctx, f.quizOpts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(votantes), opcao.VoteCount)

	votantesGravados, err := repo.ListVoters(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, votantesGravados, votantes)
}

func TestVoteRepository_VotedSlides_DeveRetornarApenasSlidesVotados(t *testing.T) {
	db := setupPostgres(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")
	token := ids.NewVoterToken()

	_, err := repo.Record(ctx, novoVoto(f, f.quiz.ID, f.quizOpts[1].ID, token), nil)
	require.NoError(t, err)

	// Act
	votados, err := repo.VotedSlides(ctx, []domain.SlideID{f.quiz.ID, f.cloud.ID}, token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []domain.SlideID{f.quiz.ID}, votados)

	votou, err := repo.HasVoted(ctx, f.quiz.ID, token)
	require.NoError(t, err)
	assert.True(t, votou)
}
