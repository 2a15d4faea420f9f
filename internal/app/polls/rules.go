package polls

import (
	"context"
	"strings"

	"github.com/marcelojr/enquetes/internal/domain"
)

// ValidateSlide é compartilhada com as apresentações salvas, que guardam o mesmo formato de slide.
func ValidateSlide(spec domain.SlideSpec) error {
	if !spec.Type.Valid() {
		return domain.NewValidationError("type", "tipo de slide invalido")
	}
	if strings.TrimSpace(spec.Question) == "" {
		return domain.NewValidationError("question", "pergunta obrigatoria")
	}
	if spec.Type == domain.SlideTypeQuiz {
		validas := 0
		for _, o := range spec.Options {
			if strings.TrimSpace(o) != "" {
				validas++
			}
		}
		if validas < 2 {
			return domain.NewValidationError("options", "quiz precisa de ao menos duas opcoes")
		}
	}
	return nil
}

func pollTitle(in domain.CreatePollInput) string {
	if t := strings.TrimSpace(in.Title); t != "" {
		return t
	}
	if len(in.Slides) > 0 {
		if q := strings.TrimSpace(in.Slides[0].Question); q != "" {
			return q
		}
	}
	return defaultTitle
}

// authorize libera enquetes anônimas para quem tem o código; as demais só para o dono.
func authorize(poll domain.Poll, presenterID string) error {
	if poll.PresenterID != "" && poll.PresenterID != presenterID {
		return domain.ErrForbidden
	}
	return nil
}

func containsSlide(slides []domain.Slide, id domain.SlideID) bool {
	for _, sl := range slides {
		if sl.ID == id {
			return true
		}
	}
	return false
}

// assembleView junta slides e opções na ordem dos slides.
func assembleView(ctx context.Context, store domain.PollStore, poll domain.Poll, slides []domain.Slide) (domain.PollView, error) {
	slideIDs := make([]domain.SlideID, len(slides))
	for i, sl := range slides {
		slideIDs[i] = sl.ID
	}
	options, err := store.Options(ctx, slideIDs)
	if err != nil {
		return domain.PollView{}, err
	}

	porSlide := make(map[domain.SlideID][]domain.Option, len(slides))
	for _, o := range options {
		porSlide[o.SlideID] = append(porSlide[o.SlideID], o)
	}

	view := domain.PollView{Poll: poll, Slides: make([]domain.SlideView, len(slides))}
	for i, sl := range slides {
		view.Slides[i] = domain.SlideView{Slide: sl, Options: nonNil(porSlide[sl.ID])}
	}
	return view, nil
}

func nonNil(opts []domain.Option) []domain.Option {
	if opts == nil {
		return []domain.Option{}
	}
	return opts
}
