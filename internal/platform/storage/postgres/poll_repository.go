package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/enquetes/internal/domain"
)

// PollRepository persiste o agregado da enquete. As tabelas são mapeadas direto
// pelas structs do domínio, que já carregam as tags GORM usadas nas migrations.
type PollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) *PollRepository {
	return &PollRepository{db: db}
}

// Create grava enquete, slides e opções numa única transação.
func (r *PollRepository) Create(ctx context.Context, poll domain.Poll, slides []domain.Slide, options []domain.Option) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrCodeInUse
			}
			return err
		}
		if len(slides) > 0 {
			if err := tx.Create(&slides).Error; err != nil {
				return err
			}
		}
		if len(options) > 0 {
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, domain.ErrCodeInUse) {
		return err
	}
	return wrap("gorm polls: inserir", err)
}

func (r *PollRepository) FindByCode(ctx context.Context, code string) (domain.Poll, error) {
	var poll domain.Poll
	err := r.db.WithContext(ctx).
		Where("code = ? AND archived_at IS NULL", code).
		First(&poll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Poll{}, domain.NewNotFoundError("enquete", code)
		}
		return domain.Poll{}, wrap("gorm polls: buscar codigo", err)
	}
	return poll, nil
}

func (r *PollRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("code = ? AND archived_at IS NULL", code).
		Count(&total).Error; err != nil {
		return false, wrap("gorm polls: verificar codigo", err)
	}
	return total > 0, nil
}

// SetActiveSlide só altera a enquete se o slide pertencer a ela; caso contrário nada muda.
func (r *PollRepository) SetActiveSlide(ctx context.Context, id domain.PollID, slideID domain.SlideID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("id = ? AND archived_at IS NULL", id).
		Where("EXISTS (SELECT 1 FROM slides WHERE slides.id = ? AND slides.poll_id = polls.id)", slideID).
		UpdateColumn("active_slide_id", slideID)
	if res.Error != nil {
		return wrap("gorm polls: slide ativo", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("slide", string(slideID))
	}
	return nil
}

// TransitionStatus só sai de "active": nenhum estado volta a ficar ativo.
func (r *PollRepository) TransitionStatus(ctx context.Context, id domain.PollID, to domain.PollStatus, at time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if to == domain.PollStatusCompleted {
		updates["completed_at"] = at
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("id = ? AND status = ? AND archived_at IS NULL", id, domain.PollStatusActive).
		UpdateColumns(updates)
	if res.Error != nil {
		return false, wrap("gorm polls: status", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PollRepository) Archive(ctx context.Context, id domain.PollID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Poll{}).
		Where("id = ? AND archived_at IS NULL", id).
		UpdateColumn("archived_at", at)
	if res.Error != nil {
		return wrap("gorm polls: arquivar", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("enquete", string(id))
	}
	return nil
}

// Delete remove a enquete em cascata: votos, participantes, opções, slides e por fim a enquete.
func (r *PollRepository) Delete(ctx context.Context, id domain.PollID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slideIDs []string
		if err := tx.Model(&domain.Slide{}).Where("poll_id = ?", id).Pluck("id", &slideIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&domain.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&domain.Participant{}).Error; err != nil {
			return err
		}
		if len(slideIDs) > 0 {
			if err := tx.Where("slide_id IN ?", slideIDs).Delete(&domain.Option{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("poll_id = ?", id).Delete(&domain.Slide{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Poll{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("enquete", string(id))
		}
		return nil
	})
	if domain.IsNotFound(err) {
		return err
	}
	return wrap("gorm polls: excluir", err)
}

// List atende o painel administrativo e as rotinas de manutenção; enquetes arquivadas ficam de fora.
func (r *PollRepository) List(ctx context.Context, filter domain.PollFilter) ([]domain.PollSummary, error) {
	q := r.db.WithContext(ctx).
		Table("polls").
		Select("polls.*, (SELECT COUNT(*) FROM slides WHERE slides.poll_id = polls.id) AS slide_count").
		Where("polls.archived_at IS NULL")

	if filter.Status != "" {
		q = q.Where("polls.status = ?", filter.Status)
	}
	if filter.PresenterID != "" {
		q = q.Where("polls.presenter_id = ?", filter.PresenterID)
	}
	if filter.AnonymousOnly {
		q = q.Where("(polls.presenter_id = '' OR polls.presenter_id IS NULL)")
	}
	if filter.OwnedOnly {
		q = q.Where("polls.presenter_id <> ''")
	}
	if !filter.ExpiresBefore.IsZero() {
		q = q.Where("polls.expires_at < ?", filter.ExpiresBefore)
	}
	if !filter.CreatedBefore.IsZero() {
		q = q.Where("polls.created_at < ?", filter.CreatedBefore)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var result []domain.PollSummary
	if err := q.Order("polls.created_at DESC").Scan(&result).Error; err != nil {
		return nil, wrap("gorm polls: listar", err)
	}
	return result, nil
}

var _ domain.PollRepository = (*PollRepository)(nil)
