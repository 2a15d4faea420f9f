package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
)

// tentativasOrdem limita as repetições quando dois slides disputam a mesma posição.
const tentativasOrdem = 3

type SlideRepository struct {
	db *gorm.DB
}

func NewSlideRepository(db *gorm.DB) *SlideRepository {
	return &SlideRepository{db: db}
}

func (r *SlideRepository) ListByPoll(ctx context.Context, pollID domain.PollID) ([]domain.Slide, error) {
	var slides []domain.Slide
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("order_index ASC").
		Find(&slides).Error; err != nil {
		return nil, wrap("gorm slides: listar", err)
	}
	return slides, nil
}

// Append coloca o slide depois do último existente. A posição é calculada dentro da
// transação e o índice único (poll_id, order_index) resolve a corrida entre inserções.
func (r *SlideRepository) Append(ctx context.Context, slide domain.Slide, options []domain.Option) (domain.Slide, error) {
	var err error
	for tentativa := 0; tentativa < tentativasOrdem; tentativa++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var ultimo int
			if err := tx.Model(&domain.Slide{}).
				Where("poll_id = ?", slide.PollID).
				Select("COALESCE(MAX(order_index), -1)").
				Scan(&ultimo).Error; err != nil {
				return err
			}
			slide.OrderIndex = ultimo + 1

			if err := tx.Create(&slide).Error; err != nil {
				return err
			}
			if len(options) > 0 {
				for i := range options {
					options[i].SlideID = slide.ID
				}
				if err := tx.Create(&options).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return slide, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	return domain.Slide{}, wrap("gorm slides: anexar", err)
}

var _ domain.SlideRepository = (*SlideRepository)(nil)
