package antifraude

import (
	"context"

	"github.com/marcelojr/enquetes/internal/domain"
)

// Noop representa uma estratégia de antifraude desabilitada.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(context.Context, domain.VoteAttempt) error {
	return nil
}

var _ domain.Antifraude = Noop{}
