package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("registro nao encontrado")
	ErrAlreadyVoted       = errors.New("voto ja registrado para este slide")
	ErrValidation         = errors.New("requisicao invalida")
	ErrCollisionExhausted = errors.New("nao foi possivel gerar um codigo unico")
	ErrUnavailable        = errors.New("armazenamento indisponivel")
	ErrPollClosed         = errors.New("enquete encerrada")
	ErrForbidden          = errors.New("operacao nao permitida")
	ErrUnauthorized       = errors.New("credencial ausente ou invalida")
	// ErrCodeInUse sinaliza corrida na reserva do código; o gerador tenta novamente.
	ErrCodeInUse = errors.New("codigo ja em uso")
)

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s nao encontrado", e.Entity)
	}
	return fmt.Sprintf("%s %q nao encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError embrulha falhas de infraestrutura mantendo a causa original.
type UnavailableError struct {
	Backend string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s indisponivel: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() []error { return []error{ErrUnavailable, e.Err} }

func NewUnavailableError(backend string, err error) error {
	return &UnavailableError{Backend: backend, Err: err}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsAlreadyVoted(err error) bool { return errors.Is(err, ErrAlreadyVoted) }

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
