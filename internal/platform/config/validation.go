package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate falha cedo: o binário não deve subir com configuração inválida.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("config invalida:\n  %s", strings.Join(msgs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s e obrigatorio", field)
	case "required_if":
		return fmt.Sprintf("%s e obrigatorio quando %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s deve ser no minimo %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s deve ser no maximo %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s deve ser um de: %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", field, e.Param())
	default:
		return fmt.Sprintf("%s falhou na validacao %s", field, e.Tag())
	}
}

// formatFieldPath converte "Config.Polls.CodeLength" em "polls.codelength".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}
