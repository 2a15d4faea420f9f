package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/logger"
)

// PubSub distribui eventos em tempo real entre réplicas da API usando PUBLISH/SUBSCRIBE.
type PubSub struct {
	client *redis.Client
}

func NewPubSub(client *redis.Client) *PubSub {
	return &PubSub{client: client}
}

func (p *PubSub) Publish(ctx context.Context, channel, event string, payload any) error {
	corpo, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("redis pubsub: falha serializando payload: %w", err)
	}
	msg, err := json.Marshal(domain.Message{Channel: channel, Event: event, Payload: corpo})
	if err != nil {
		return fmt.Errorf("redis pubsub: falha serializando mensagem: %w", err)
	}
	if err := p.client.Publish(ctx, channel, msg).Err(); err != nil {
		return domain.NewUnavailableError("redis", fmt.Errorf("redis pubsub: publicar: %w", err))
	}
	return nil
}

// Subscribe só retorna depois que o Redis confirmou a inscrição, então nenhuma
// mensagem publicada após o retorno é perdida.
func (p *PubSub) Subscribe(ctx context.Context, channel string) (<-chan domain.Message, error) {
	sub := p.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, domain.NewUnavailableError("redis", fmt.Errorf("redis pubsub: inscrever: %w", err))
	}

	out := make(chan domain.Message, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		entrada := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-entrada:
				if !ok {
					return
				}
				var msg domain.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					logger.Warn("redis pubsub: mensagem invalida descartada", "channel", raw.Channel, "error", err)
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

var (
	_ domain.Publisher  = (*PubSub)(nil)
	_ domain.Subscriber = (*PubSub)(nil)
)
