package repository

import (
	"context"
	"mandabem_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) WithTx(tx *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: tx}
}

func (r *ChallengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	return r.DB.WithContext(ctx).Create(challenge).Error
}

func (r *ChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.WithContext(ctx).Preload("Location").First(&challenge, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// List city 为空时不过滤；草稿不对外展示
func (r *ChallengeRepository) List(ctx context.Context, city string) ([]model.Challenge, error) {
	var challenges []model.Challenge
	query := r.DB.WithContext(ctx).Preload("Location").
		Where("challenges.status <> ?", model.ChallengeDraft)

	if city != "" {
		query = query.Joins("JOIN locations ON locations.id = challenges.location_id").
			Where("locations.city = ?", city)
	}

	err := query.Order("challenges.ends_at desc").Find(&challenges).Error
	return challenges, err
}

// UpdateStatus 条件更新，仅当当前状态仍为 from 时生效
func (r *ChallengeRepository) UpdateStatus(ctx context.Context, id string, from, to model.ChallengeStatus) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&model.Challenge{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
