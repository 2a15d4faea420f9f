package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/enquetes/internal/domain"
)

// VoteRepository grava votos. O índice único (slide_id, voter_token) é a barreira final
// contra voto duplicado; o incremento do contador acontece na mesma transação.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Record(ctx context.Context, vote domain.Vote, newOption *domain.Option) (domain.Option, error) {
	var atualizada domain.Option
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newOption != nil {
			id, err := upsertWordOption(tx, *newOption)
			if err != nil {
				return err
			}
			vote.OptionID = id
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slide_id"}, {Name: "voter_token"}},
			DoNothing: true,
		}).Create(&vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrAlreadyVoted
		}

		inc := tx.Model(&domain.Option{}).
			Where("id = ? AND slide_id = ?", vote.OptionID, vote.SlideID).
			UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return domain.NewNotFoundError("opcao", string(vote.OptionID))
		}

		return tx.Where("id = ?", vote.OptionID).First(&atualizada).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) || domain.IsNotFound(err) {
			return domain.Option{}, err
		}
		return domain.Option{}, wrap("gorm votos: registrar", err)
	}
	return atualizada, nil
}

// upsertWordOption cria a palavra ou reaproveita a que já existe com o mesmo texto
// normalizado. A primeira grafia gravada é a que permanece.
func upsertWordOption(tx *gorm.DB, option domain.Option) (domain.OptionID, error) {
	if option.NormalizedText == nil {
		return "", domain.NewValidationError("text", "palavra sem texto normalizado")
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slide_id"}, {Name: "normalized_text"}},
		DoNothing: true,
	}).Create(&option).Error; err != nil {
		return "", err
	}

	var existente domain.Option
	if err := tx.Where("slide_id = ? AND normalized_text = ?", option.SlideID, *option.NormalizedText).
		First(&existente).Error; err != nil {
		return "", err
	}
	return existente.ID, nil
}

func (r *VoteRepository) HasVoted(ctx context.Context, slideID domain.SlideID, voterToken string) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("slide_id = ? AND voter_token = ?", slideID, voterToken).
		Count(&total).Error; err != nil {
		return false, wrap("gorm votos: verificar", err)
	}
	return total > 0, nil
}

func (r *VoteRepository) VotedSlides(ctx context.Context, slideIDs []domain.SlideID, voterToken string) ([]domain.SlideID, error) {
	if len(slideIDs) == 0 {
		return nil, nil
	}
	var ids []domain.SlideID
	if err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("slide_id IN ? AND voter_token = ?", slideIDs, voterToken).
		Pluck("slide_id", &ids).Error; err != nil {
		return nil, wrap("gorm votos: slides votados", err)
	}
	return ids, nil
}

func (r *VoteRepository) ListVoters(ctx context.Context, slideID domain.SlideID) ([]string, error) {
	var tokens []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("slide_id = ?", slideID).
		Pluck("voter_token", &tokens).Error; err != nil {
		return nil, wrap("gorm votos: votantes", err)
	}
	return tokens, nil
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
