package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/antifraude"
)

func responderJSON(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// responderErro traduz a taxonomia do domínio para status HTTP. Voto repetido não é
// tratado como falha pelo cliente, por isso tem corpo próprio.
func responderErro(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrAlreadyVoted) {
		responderJSON(c, http.StatusConflict, gin.H{"status": "already_voted"})
		return
	}
	status := statusFromError(err)
	mensagem := err.Error()
	if status == http.StatusInternalServerError {
		mensagem = "erro interno"
	}
	responderJSON(c, status, gin.H{"erro": mensagem})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyVoted), errors.Is(err, domain.ErrPollClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrCollisionExhausted), errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// bindErro converte falhas de binding do gin em ValidationError.
func bindErro(err error) error {
	return domain.NewValidationError("body", err.Error())
}
