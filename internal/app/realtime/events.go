// Pacote realtime publica snapshots das enquetes e acompanha as mudanças do lado
// de quem assiste: eventos do barramento e uma consulta periódica alimentam o mesmo redutor.
package realtime

import "github.com/marcelojr/enquetes/internal/domain"

const (
	EventPollUpdated = "poll-updated"
	EventVoteUpdated = "vote-updated"
)

// Channel devolve o canal de uma enquete.
func Channel(code string) string {
	return "poll-" + code
}

// SnapshotOf monta o payload completo de "poll-updated".
func SnapshotOf(view domain.PollView) domain.Snapshot {
	return domain.Snapshot{
		Code:          view.Code,
		Status:        view.Status,
		ActiveSlideID: view.ActiveSlideID,
		Slides:        view.Slides,
	}
}

// SlideSnapshot monta o payload de "vote-updated", só com o slide afetado.
func SlideSnapshot(poll domain.Poll, slide domain.SlideView) domain.Snapshot {
	return domain.Snapshot{
		Code:          poll.Code,
		Status:        poll.Status,
		ActiveSlideID: poll.ActiveSlideID,
		Slides:        []domain.SlideView{slide},
	}
}
