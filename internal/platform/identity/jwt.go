// Pacote identity adapta o provedor de identidade externo: valida o bearer e devolve o id do usuário.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marcelojr/enquetes/internal/domain"
)

// JWTVerifier valida tokens HS256 emitidos pelo provedor. O id vem de "sub" ou, na falta, de "uid".
type JWTVerifier struct {
	secret []byte
	issuer string
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *JWTVerifier) Authenticate(_ context.Context, bearer string) (string, error) {
	if bearer == "" || len(v.secret) == 0 {
		return "", domain.ErrUnauthorized
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(bearer, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthorized
	}

	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	if uid, _ := claims["uid"].(string); uid != "" {
		return uid, nil
	}
	return "", fmt.Errorf("%w: token sem identificador", domain.ErrUnauthorized)
}

// Issue emite um token de acesso. Usado pelo pollctl em ambientes locais e pelos testes.
func (v *JWTVerifier) Issue(userID string, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("identity: segredo jwt nao configurado")
	}
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["sub"] = userID
	claims["exp"] = time.Now().Add(ttl).Unix()
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}

	return token.SignedString(v.secret)
}

// Anonymous é usado quando nenhum segredo foi configurado: toda credencial é recusada.
type Anonymous struct{}

func (Anonymous) Authenticate(context.Context, string) (string, error) {
	return "", domain.ErrUnauthorized
}

var (
	_ domain.Authenticator = (*JWTVerifier)(nil)
	_ domain.Authenticator = Anonymous{}
)
