package realtime

import (
	"context"
	"log/slog"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// Notifier publica os snapshots depois das mutações. Falha de publicação nunca
// desfaz nem falha a operação que a originou.
type Notifier struct {
	pub domain.Publisher
	log *slog.Logger
}

func NewNotifier(pub domain.Publisher, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{pub: pub, log: log}
}

func (n *Notifier) PollUpdated(ctx context.Context, snap domain.Snapshot) {
	n.publish(ctx, EventPollUpdated, snap)
}

func (n *Notifier) VoteUpdated(ctx context.Context, snap domain.Snapshot) {
	n.publish(ctx, EventVoteUpdated, snap)
}

func (n *Notifier) publish(ctx context.Context, event string, snap domain.Snapshot) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, Channel(snap.Code), event, snap); err != nil {
		metrics.ObservePublish(event, "error")
		n.log.WarnContext(ctx, "realtime: falha ao publicar evento", "event", event, "code", snap.Code, "error", err)
		return
	}
	metrics.ObservePublish(event, "ok")
}

var _ domain.Notifier = (*Notifier)(nil)
