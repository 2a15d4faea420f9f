package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

type streamEvent struct {
	name string
	snap domain.Snapshot
}

// stream mantém um SSE por cliente. O follower roda em outra goroutine e entrega os
// snapshots por canal; só esta goroutine escreve na resposta.
func (a *API) stream(c *gin.Context) {
	code := c.Param("code")
	if _, err := a.polls.GetPoll(c.Request.Context(), code); err != nil {
		a.falha(c, "stream de enquete indisponivel", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Mesmo valor que o render SSE do gin grava ao emitir o primeiro evento.
	c.Header("Content-Type", "text/event-stream;charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	metrics.StreamClientConnected()
	defer metrics.StreamClientDisconnected()

	eventos := make(chan streamEvent, 16)
	fim := make(chan error, 1)
	go func() {
		fim <- a.streamer.Run(ctx, code, func(event string, snap domain.Snapshot) error {
			select {
			case eventos <- streamEvent{name: event, snap: snap}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	heartbeat := time.NewTicker(a.opts.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-fim:
			for len(eventos) > 0 {
				ev := <-eventos
				c.SSEvent(ev.name, ev.snap)
			}
			c.Writer.Flush()
			if err != nil && !domain.IsNotFound(err) {
				a.logger.WarnContext(ctx, "stream encerrado com erro", "code", code, "error", err)
			}
			return
		case ev := <-eventos:
			c.SSEvent(ev.name, ev.snap)
			c.Writer.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
