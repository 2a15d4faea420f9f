package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/enquetes/internal/domain"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Add é idempotente: o mesmo token no mesmo slide conta uma vez só.
func (r *ParticipantRepository) Add(ctx context.Context, p domain.Participant) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p).Error; err != nil {
		return wrap("gorm participantes: inserir", err)
	}
	return nil
}

func (r *ParticipantRepository) Count(ctx context.Context, slideID domain.SlideID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("slide_id = ?", slideID).
		Count(&total).Error; err != nil {
		return 0, wrap("gorm participantes: contar", err)
	}
	return total, nil
}

func (r *ParticipantRepository) ListTokens(ctx context.Context, slideID domain.SlideID) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("slide_id = ?", slideID).
		Pluck("voter_token", &tokens).Error; err != nil {
		return nil, wrap("gorm participantes: tokens", err)
	}
	return tokens, nil
}

var _ domain.ParticipantRepository = (*ParticipantRepository)(nil)
