package presentations

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/app/polls"
	"github.com/marcelojr/enquetes/internal/app/realtime"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/clock"
	"github.com/marcelojr/enquetes/internal/platform/storage/postgres"
	"github.com/marcelojr/enquetes/internal/platform/storage/storetest"
)

func newService(t *testing.T) (*Service, *polls.Service, *clock.Manual) {
	t.Helper()
	relogio := clock.NewManual(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	env := storetest.New(t, relogio, false)
	notifier := realtime.NewNotifier(realtime.NewHub(), nil)
	lifecycle := polls.NewService(env.Store, notifier, relogio, nil, nil, polls.Settings{}, nil)
	return NewService(postgres.NewPresentationRepository(env.DB), lifecycle, relogio, nil, nil), lifecycle, relogio
}

func deck(owner string) domain.SavedPresentation {
	return domain.SavedPresentation{
		OwnerID: owner,
		Title:   gofakeit.Sentence(3),
		Slides: []domain.SlideSpec{
			{Type: domain.SlideTypeQuiz, Question: gofakeit.Question(), Options: []string{"Sim", "Nao"}},
			{Type: domain.SlideTypeWordCloud, Question: "Uma palavra sobre a aula"},
		},
	}
}

func TestService_Save_QuandoNovo_DeveCriarComID(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	salvo, err := svc.Save(ctx, deck("ana"))

	require.NoError(t, err)
	assert.NotEmpty(t, salvo.ID)
	lista, err := svc.List(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Len(t, lista[0].Slides, 2)
}

func TestService_Save_QuandoExistente_DeveAtualizar(t *testing.T) {
	svc, _, relogio := newService(t)
	ctx := context.Background()
	salvo, err := svc.Save(ctx, deck("ana"))
	require.NoError(t, err)

	relogio.Avancar(time.Minute)
	salvo.Title = "Revisao final"
	salvo.Slides = salvo.Slides[:1]
	atualizado, err := svc.Save(ctx, salvo)

	require.NoError(t, err)
	assert.Equal(t, "Revisao final", atualizado.Title)
	assert.Len(t, atualizado.Slides, 1)
	assert.True(t, atualizado.UpdatedAt.After(atualizado.CreatedAt))
}

func TestService_Save_QuandoInvalido_DeveRetornarValidation(t *testing.T) {
	svc, _, _ := newService(t)

	cases := map[string]func(p *domain.SavedPresentation){
		"sem titulo":        func(p *domain.SavedPresentation) { p.Title = "  " },
		"sem slides":        func(p *domain.SavedPresentation) { p.Slides = nil },
		"quiz sem opcoes":   func(p *domain.SavedPresentation) { p.Slides[0].Options = []string{"so uma"} },
		"tipo desconhecido": func(p *domain.SavedPresentation) { p.Slides[1].Type = "ranking" },
	}
	for nome, alterar := range cases {
		t.Run(nome, func(t *testing.T) {
			p := deck("ana")
			alterar(&p)

			_, err := svc.Save(context.Background(), p)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestService_Get_QuandoOutroDono_DeveRetornarNotFound(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	salvo, err := svc.Save(ctx, deck("ana"))
	require.NoError(t, err)

	_, err = svc.Get(ctx, salvo.ID, "bia")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, salvo.ID, "bia")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.List(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Launch_DeveCriarEnqueteDoDono(t *testing.T) {
	svc, lifecycle, _ := newService(t)
	ctx := context.Background()
	salvo, err := svc.Save(ctx, deck("ana"))
	require.NoError(t, err)

	view, err := svc.Launch(ctx, salvo.ID, "ana")

	require.NoError(t, err)
	assert.Equal(t, "ana", view.PresenterID)
	assert.Equal(t, salvo.Title, view.Title)
	require.Len(t, view.Slides, 2)
	assert.Equal(t, view.Slides[0].ID, view.ActiveSlideID)

	minhas, err := lifecycle.ListByPresenter(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, minhas, 1)

	// O deck continua disponível depois do lançamento.
	_, err = svc.Get(ctx, salvo.ID, "ana")
	assert.NoError(t, err)
}
