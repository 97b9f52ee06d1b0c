package repository

import (
	"context"
	"mandabem_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

func (r *EvaluationRepository) WithTx(tx *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: tx}
}

// Create 重复评审由 (submission_id, judge_id) 唯一索引拒绝，调用方用 IsDuplicate 判断
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *model.Evaluation) error {
	return r.DB.WithContext(ctx).Create(evaluation).Error
}

func (r *EvaluationRepository) Exists(ctx context.Context, submissionID, judgeID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Evaluation{}).
		Where("submission_id = ? AND judge_id = ?", submissionID, judgeID).
		Count(&count).Error
	return count > 0, err
}

func (r *EvaluationRepository) ListBySubmission(ctx context.Context, submissionID string) ([]model.Evaluation, error) {
	var es []model.Evaluation
	err := r.DB.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at asc").
		Find(&es).Error
	return es, err
}
