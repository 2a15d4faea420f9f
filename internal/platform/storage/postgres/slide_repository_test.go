package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/ids"
)

func TestSlideRepository_Append_DeveColocarDepoisDoUltimo(t *testing.T) {
	db := setupPostgres(t)
	repo := NewSlideRepository(db)
	options := NewOptionRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	// Arrange
	slide := domain.Slide{
		ID: domain.SlideID(ids.NewULID()), PollID: f.poll.ID, Type: domain.SlideTypeQuiz,
		Question: "Sim ou não?", Style: "bar", CreatedAt: time.Now(),
	}
	opts := []domain.Option{
		{ID: domain.OptionID(ids.NewULID()), Text: "Sim", Position: 0, CreatedAt: time.Now()},
		{ID: domain.OptionID(ids.NewULID()), Text: "Não", Position: 1, CreatedAt: time.Now()},
	}

	// Act
	criado, err := repo.Append(ctx, slide, opts)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, criado.OrderIndex)

	slides, err := repo.ListByPoll(ctx, f.poll.ID)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{slides[0].OrderIndex, slides[1].OrderIndex, slides[2].OrderIndex})
	assert.Equal(t, criado.ID, slides[2].ID)

	gravadas, err := options.ListBySlides(ctx, []domain.SlideID{criado.ID})
	require.NoError(t, err)
	require.Len(t, gravadas, 2)
	assert.Equal(t, "Sim", gravadas[0].Text)
	assert.Equal(t, criado.ID, gravadas[1].SlideID)
}

func TestSlideRepository_Append_QuandoEnqueteSemSlides_DeveComecarDoZero(t *testing.T) {
	db := setupPostgres(t)
	repo := NewSlideRepository(db)
	ctx := context.Background()

	pollID := domain.PollID(ids.NewUUID())
	require.NoError(t, NewPollRepository(db).Create(ctx, domain.Poll{
		ID: pollID, Code: "123456", Title: "Vazia", Status: domain.PollStatusActive,
		CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}, nil, nil))

	criado, err := repo.Append(ctx, domain.Slide{
		ID: domain.SlideID(ids.NewULID()), PollID: pollID, Type: domain.SlideTypeWordCloud,
		Question: "Palavra?", CreatedAt: time.Now(),
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, criado.OrderIndex)
}

func TestOptionRepository_FindByID_QuandoNaoExiste_DeveRetornarNotFound(t *testing.T) {
	db := setupPostgres(t)

	_, err := NewOptionRepository(db).FindByID(context.Background(), "inexistente")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParticipantRepository_Add_DeveSerIdempotente(t *testing.T) {
	db := setupPostgres(t)
	repo := NewParticipantRepository(db)
	ctx := context.Background()
	f := seedPoll(t, db, "123456")

	p := domain.Participant{SlideID: f.quiz.ID, VoterToken: "token-1", PollID: f.poll.ID, JoinedAt: time.Now()}

	// Act
	require.NoError(t, repo.Add(ctx, p))
	require.NoError(t, repo.Add(ctx, p))
	p.VoterToken = "token-2"
	require.NoError(t, repo.Add(ctx, p))

	// Assert
	total, err := repo.Count(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	tokens, err := repo.ListTokens(ctx, f.quiz.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"token-1", "token-2"}, tokens)
}
