package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
)

type OptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

func (r *OptionRepository) FindByID(ctx context.Context, id domain.OptionID) (domain.Option, error) {
	var option domain.Option
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&option).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Option{}, domain.NewNotFoundError("opcao", string(id))
		}
		return domain.Option{}, wrap("gorm options: buscar", err)
	}
	return option, nil
}

// ListBySlides devolve as opções agrupadas por slide, na ordem em que foram criadas.
func (r *OptionRepository) ListBySlides(ctx context.Context, slideIDs []domain.SlideID) ([]domain.Option, error) {
	if len(slideIDs) == 0 {
		return nil, nil
	}
	var options []domain.Option
	if err := r.db.WithContext(ctx).
		Where("slide_id IN ?", slideIDs).
		Order("slide_id ASC, position ASC, created_at ASC, id ASC").
		Find(&options).Error; err != nil {
		return nil, wrap("gorm options: listar", err)
	}
	return options, nil
}

var _ domain.OptionRepository = (*OptionRepository)(nil)
