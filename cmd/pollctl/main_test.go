package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/platform/identity"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestToken_DeveEmitirBearerValido(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-local")
	t.Setenv("JWT_ISSUER", "enquetes")

	out, err := run(t, "token", "ana", "--ttl", "1m")

	require.NoError(t, err)
	id, err := identity.NewJWTVerifier("segredo-local", "enquetes").Authenticate(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ana", id)
}

func TestToken_QuandoSemSegredo_DeveFalhar(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "token", "ana")

	assert.Error(t, err)
}

func TestSweep_QuandoAcaoDesconhecida_DeveFalharAntesDeConectar(t *testing.T) {
	_, err := run(t, "sweep", "drop_everything")

	assert.Error(t, err)
}

func TestGrantAdmin_ExigeUmArgumento(t *testing.T) {
	_, err := run(t, "grant-admin")

	assert.Error(t, err)
}
