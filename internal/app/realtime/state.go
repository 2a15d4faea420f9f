package realtime

import (
	"reflect"
	"sort"
	"sync"

	"github.com/marcelojr/enquetes/internal/domain"
)

// State é o redutor do lado do espectador: aplica o snapshot mais recente, mescla
// slides por id e informa se algo mudou. Aplicar o mesmo snapshot duas vezes não muda nada.
type State struct {
	mu   sync.Mutex
	snap domain.Snapshot
}

func NewState() *State {
	return &State{}
}

func (s *State) Apply(in domain.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.Snapshot{
		Code:          in.Code,
		Status:        in.Status,
		ActiveSlideID: in.ActiveSlideID,
		Slides:        make([]domain.SlideView, 0, len(s.snap.Slides)+len(in.Slides)),
	}
	if next.Code == "" {
		next.Code = s.snap.Code
	}

	porID := make(map[domain.SlideID]int, len(s.snap.Slides))
	for _, sl := range s.snap.Slides {
		porID[sl.ID] = len(next.Slides)
		next.Slides = append(next.Slides, sl)
	}
	for _, sl := range in.Slides {
		if i, ok := porID[sl.ID]; ok {
			next.Slides[i] = sl
			continue
		}
		porID[sl.ID] = len(next.Slides)
		next.Slides = append(next.Slides, sl)
	}
	sort.SliceStable(next.Slides, func(i, j int) bool {
		return next.Slides[i].OrderIndex < next.Slides[j].OrderIndex
	})

	if reflect.DeepEqual(normalizar(s.snap), normalizar(next)) {
		return false
	}
	s.snap = next
	return true
}

// Snapshot devolve uma cópia do estado atual.
func (s *State) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snap
	out.Slides = append([]domain.SlideView(nil), s.snap.Slides...)
	return out
}

// normalizar trata slice nil e vazio como iguais.
func normalizar(snap domain.Snapshot) domain.Snapshot {
	if len(snap.Slides) == 0 {
		snap.Slides = nil
	}
	return snap
}
