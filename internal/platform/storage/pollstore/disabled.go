package pollstore

import (
	"context"
	"time"

	"github.com/marcelojr/enquetes/internal/domain"
)

// DisabledCache substitui o Redis quando o cache está desligado: toda leitura é miss
// e toda escrita é descartada.
type DisabledCache struct{}

func (DisabledCache) Exists(context.Context, string) (bool, error) { return false, nil }

func (DisabledCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (DisabledCache) Set(context.Context, string, string, time.Duration) error { return nil }

func (DisabledCache) Del(context.Context, ...string) error { return nil }

func (DisabledCache) Expire(context.Context, string, time.Duration) error { return nil }

func (DisabledCache) HGetAll(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (DisabledCache) ReplaceHash(context.Context, string, map[string]string, time.Duration) error {
	return nil
}

func (DisabledCache) SAdd(context.Context, string, ...string) error { return nil }

func (DisabledCache) SCard(context.Context, string) (int64, error) { return 0, nil }

func (DisabledCache) SIsMember(context.Context, string, string) (bool, error) { return false, nil }

var _ domain.Cache = DisabledCache{}
