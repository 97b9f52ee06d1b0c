package repository

import (
	"context"
	"mandabem_backend/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.DB.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIDForUpdate 行锁读取，串行化同一作品上的并发评审（sqlite 驱动会忽略锁子句）
func (r *SubmissionRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountByUserAndChallenge 包含所有状态，尝试次数按历史提交总数递增
func (r *SubmissionRepository) CountByUserAndChallenge(ctx context.Context, userID, challengeID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count, err
}

// ConfirmPayment 只有 pending_payment -> paid 的条件更新，返回受影响行数
func (r *SubmissionRepository) ConfirmPayment(ctx context.Context, id, userID, paymentID string) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.StatusPendingPayment).
		Updates(map[string]interface{}{
			"status":     model.StatusPaid,
			"payment_id": paymentID,
		})
	return result.RowsAffected, result.Error
}

func (r *SubmissionRepository) MarkEvaluating(ctx context.Context, id string) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.StatusPaid).
		Update("status", model.StatusEvaluating)
	return result.RowsAffected, result.Error
}

// MarkEvaluated 从 paid/evaluating 进入终态，同时写入最终得分
func (r *SubmissionRepository) MarkEvaluated(ctx context.Context, id string, score decimal.Decimal, at time.Time) (int64, error) {
	result := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ? AND status IN ?", id, []model.SubmissionStatus{model.StatusPaid, model.StatusEvaluating}).
		Updates(map[string]interface{}{
			"status":       model.StatusEvaluated,
			"score_final":  score,
			"evaluated_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	var ss []model.Submission
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&ss).Error
	return ss, err
}

// ListPendingForJudge 已付款、尚未完成评审且该评委未评过的作品，按提交时间先后
func (r *SubmissionRepository) ListPendingForJudge(ctx context.Context, judgeUserID string, limit int) ([]model.Submission, error) {
	var ss []model.Submission
	evaluated := r.DB.Model(&model.Evaluation{}).
		Select("evaluations.submission_id").
		Joins("JOIN judges ON judges.id = evaluations.judge_id").
		Where("judges.user_id = ?", judgeUserID)

	err := r.DB.WithContext(ctx).
		Where("status IN ?", []model.SubmissionStatus{model.StatusPaid, model.StatusEvaluating}).
		Where("id NOT IN (?)", evaluated).
		Order("created_at asc").
		Limit(limit).
		Find(&ss).Error
	return ss, err
}

type LeaderboardRow struct {
	SubmissionID  string          `json:"submissionId"`
	UserID        string          `json:"userId"`
	UserName      string          `json:"userName"`
	ContentKind   string          `json:"contentType"`
	AttemptNumber int             `json:"attemptNumber"`
	ScoreFinal    decimal.Decimal `json:"scoreFinal"`
	EvaluatedAt   time.Time       `json:"evaluatedAt"`
}

// Leaderboard 同分时先完成评审者在前
func (r *SubmissionRepository) Leaderboard(ctx context.Context, challengeID string, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	query := r.DB.WithContext(ctx).Table("submissions s").
		Select("s.id AS submission_id, s.user_id, u.name AS user_name, s.content_type AS content_kind, "+
			"s.attempt_number, s.score_final, s.evaluated_at").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.challenge_id = ? AND s.status = ? AND s.score_final IS NOT NULL AND s.deleted_at IS NULL",
			challengeID, model.StatusEvaluated).
		Order("s.score_final desc, s.evaluated_at asc")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Scan(&rows).Error
	return rows, err
}
