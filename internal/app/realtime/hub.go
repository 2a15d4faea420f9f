package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/marcelojr/enquetes/internal/domain"
)

// Hub é o barramento em memória, usado quando o Redis está desligado e nos testes.
// A entrega é no máximo uma vez: assinante lento perde mensagens.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan domain.Message]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]map[chan domain.Message]struct{}),
		buffer: 16,
	}
}

func (h *Hub) Publish(_ context.Context, channel, event string, payload any) error {
	corpo, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("realtime hub: falha serializando payload: %w", err)
	}
	msg := domain.Message{Channel: channel, Event: event, Payload: corpo}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[channel] {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribe(ctx context.Context, channel string) (<-chan domain.Message, error) {
	ch := make(chan domain.Message, h.buffer)

	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[chan domain.Message]struct{})
	}
	h.subs[channel][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[channel], ch)
		if len(h.subs[channel]) == 0 {
			delete(h.subs, channel)
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Subscribers informa quantos assinantes um canal tem.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channel])
}

var (
	_ domain.Publisher  = (*Hub)(nil)
	_ domain.Subscriber = (*Hub)(nil)
)
