package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBallot_QuandoSoOpcao_DeveCriarQuizVote(t *testing.T) {
	b, err := NewBallot(" opt-1 ", "")

	require.NoError(t, err)
	assert.Equal(t, QuizVote{OptionID: "opt-1"}, b)
	assert.Equal(t, SlideTypeQuiz, b.SlideType())
}

func TestNewBallot_QuandoSoTexto_DeveCriarWordCloudVote(t *testing.T) {
	b, err := NewBallot("", "  GREAT ")

	require.NoError(t, err)
	wc, ok := b.(WordCloudVote)
	require.True(t, ok)
	assert.Equal(t, SlideTypeWordCloud, wc.SlideType())
	assert.Equal(t, "great", wc.Normalized())
	assert.Equal(t, "GREAT", wc.Display())
}

func TestNewBallot_QuandoInvalido_DeveRetornarValidation(t *testing.T) {
	cases := map[string]struct {
		optionID string
		text     string
	}{
		"nenhum":      {},
		"so espacos":  {optionID: "  ", text: "   "},
		"ambos":       {optionID: "opt-1", text: "gato"},
		"muito longo": {text: strings.Repeat("a", 81)},
	}

	for nome, tc := range cases {
		t.Run(nome, func(t *testing.T) {
			b, err := NewBallot(tc.optionID, tc.text)
			assert.Nil(t, b)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestNormalizeWord_DeveIgnorarCaixaEBordas(t *testing.T) {
	for _, w := range []string{"Cats", " cats ", "CATS"} {
		assert.Equal(t, "cats", NormalizeWord(w))
	}
}

func TestErros_DevemSerReconhecidosPeloSentinela(t *testing.T) {
	notFound := fmt.Errorf("camada: %w", NewNotFoundError("enquete", "1234"))
	assert.True(t, IsNotFound(notFound))
	assert.Equal(t, `enquete "1234" nao encontrado`, errors.Unwrap(notFound).Error())

	validation := NewValidationError("title", "obrigatorio")
	assert.True(t, IsValidation(validation))
	assert.Equal(t, "title: obrigatorio", validation.Error())

	causa := errors.New("conexao recusada")
	indisponivel := NewUnavailableError("redis", causa)
	assert.ErrorIs(t, indisponivel, ErrUnavailable)
	assert.ErrorIs(t, indisponivel, causa)
	assert.False(t, IsNotFound(indisponivel))
}

func TestPoll_OverdueAt(t *testing.T) {
	agora := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	p := Poll{Status: PollStatusActive, ExpiresAt: agora}

	assert.True(t, p.OverdueAt(agora))
	assert.False(t, p.OverdueAt(agora.Add(-time.Second)))

	p.Status = PollStatusCompleted
	assert.False(t, p.OverdueAt(agora.Add(time.Hour)))
}

func TestPalette_DeveRodarAsCores(t *testing.T) {
	assert.Equal(t, QuizPalette[0], PaletteColor(0))
	assert.Equal(t, QuizPalette[0], PaletteColor(len(QuizPalette)))
	assert.Regexp(t, `^#[0-9a-f]{6}$`, RandomColor())
}

func TestPollView_Slide(t *testing.T) {
	v := PollView{Slides: []SlideView{{Slide: Slide{ID: "s1"}}, {Slide: Slide{ID: "s2"}}}}

	s, ok := v.Slide("s2")
	require.True(t, ok)
	assert.Equal(t, SlideID("s2"), s.ID)

	_, ok = v.Slide("s9")
	assert.False(t, ok)
}
