package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
)

// PresentationRepository guarda apresentações salvas; os slides ficam numa coluna JSON.
type PresentationRepository struct {
	db *gorm.DB
}

func NewPresentationRepository(db *gorm.DB) *PresentationRepository {
	return &PresentationRepository{db: db}
}

func (r *PresentationRepository) Create(ctx context.Context, p domain.SavedPresentation) error {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return wrap("gorm apresentacoes: inserir", err)
	}
	return nil
}

// Update só altera apresentações do próprio dono.
func (r *PresentationRepository) Update(ctx context.Context, p domain.SavedPresentation) error {
	res := r.db.WithContext(ctx).
		Model(&domain.SavedPresentation{}).
		Where("id = ? AND owner_id = ?", p.ID, p.OwnerID).
		UpdateColumns(map[string]any{
			"title":      p.Title,
			"slides":     p.Slides,
			"updated_at": p.UpdatedAt,
		})
	if res.Error != nil {
		return wrap("gorm apresentacoes: atualizar", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("apresentacao", string(p.ID))
	}
	return nil
}

func (r *PresentationRepository) Delete(ctx context.Context, id domain.PresentationID, ownerID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&domain.SavedPresentation{})
	if res.Error != nil {
		return wrap("gorm apresentacoes: excluir", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("apresentacao", string(id))
	}
	return nil
}

func (r *PresentationRepository) FindByID(ctx context.Context, id domain.PresentationID) (domain.SavedPresentation, error) {
	var p domain.SavedPresentation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SavedPresentation{}, domain.NewNotFoundError("apresentacao", string(id))
		}
		return domain.SavedPresentation{}, wrap("gorm apresentacoes: buscar", err)
	}
	return p, nil
}

func (r *PresentationRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.SavedPresentation, error) {
	var lista []domain.SavedPresentation
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&lista).Error; err != nil {
		return nil, wrap("gorm apresentacoes: listar", err)
	}
	return lista, nil
}

var _ domain.PresentationRepository = (*PresentationRepository)(nil)
