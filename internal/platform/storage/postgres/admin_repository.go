package postgres

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/enquetes/internal/domain"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.AdminUser{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return false, wrap("gorm admins: verificar", err)
	}
	return total > 0, nil
}

// Grant é idempotente; uma nova concessão apenas atualiza quem concedeu e quando.
func (r *AdminRepository) Grant(ctx context.Context, admin domain.AdminUser) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"granted_by", "granted_at"}),
		}).
		Create(&admin).Error; err != nil {
		return wrap("gorm admins: conceder", err)
	}
	return nil
}

// PresenterStats soma enquetes vivas e apresentações salvas por apresentador.
func (r *AdminRepository) PresenterStats(ctx context.Context) ([]domain.PresenterStats, error) {
	type resultado struct {
		PresenterID string
		Total       int64
	}

	var enquetes []resultado
	if err := r.db.WithContext(ctx).
		Model(&domain.Poll{}).
		Select("presenter_id AS presenter_id, COUNT(*) AS total").
		Where("presenter_id <> '' AND archived_at IS NULL").
		Group("presenter_id").
		Scan(&enquetes).Error; err != nil {
		return nil, wrap("gorm admins: estatisticas enquetes", err)
	}

	var apresentacoes []resultado
	if err := r.db.WithContext(ctx).
		Model(&domain.SavedPresentation{}).
		Select("owner_id AS presenter_id, COUNT(*) AS total").
		Group("owner_id").
		Scan(&apresentacoes).Error; err != nil {
		return nil, wrap("gorm admins: estatisticas apresentacoes", err)
	}

	porID := make(map[string]*domain.PresenterStats)
	obter := func(id string) *domain.PresenterStats {
		s, ok := porID[id]
		if !ok {
			s = &domain.PresenterStats{PresenterID: id}
			porID[id] = s
		}
		return s
	}
	for _, item := range enquetes {
		obter(item.PresenterID).PollCount = item.Total
	}
	for _, item := range apresentacoes {
		obter(item.PresenterID).PresentationCount = item.Total
	}

	stats := make([]domain.PresenterStats, 0, len(porID))
	for _, s := range porID {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PollCount != stats[j].PollCount {
			return stats[i].PollCount > stats[j].PollCount
		}
		return stats[i].PresenterID < stats[j].PresenterID
	})
	return stats, nil
}

var _ domain.AdminRepository = (*AdminRepository)(nil)
