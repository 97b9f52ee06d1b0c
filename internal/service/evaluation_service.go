package service

import (
	"context"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/scoring"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"mandabem_backend/pkg/monitoring"
	"mandabem_backend/pkg/tracing"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultPendingLimit 评委待评列表单次返回上限
const DefaultPendingLimit = 50

// CacheInvalidator 作品完成评审后通知排行榜缓存失效
type CacheInvalidator interface {
	Invalidate(ctx context.Context, challengeID string)
}

type EvaluationService struct {
	DB             *gorm.DB
	SubmissionRepo *repository.SubmissionRepository
	EvaluationRepo *repository.EvaluationRepository
	JudgeRepo      *repository.JudgeRepository
	Cache          CacheInvalidator
	Now            func() time.Time

	requiredJudges atomic.Int32
}

func NewEvaluationService(
	db *gorm.DB,
	submissionRepo *repository.SubmissionRepository,
	evaluationRepo *repository.EvaluationRepository,
	judgeRepo *repository.JudgeRepository,
	cache CacheInvalidator,
	requiredJudges int,
) *EvaluationService {
	s := &EvaluationService{
		DB:             db,
		SubmissionRepo: submissionRepo,
		EvaluationRepo: evaluationRepo,
		JudgeRepo:      judgeRepo,
		Cache:          cache,
		Now:            time.Now,
	}
	s.SetRequiredJudges(requiredJudges)
	return s
}

// SetRequiredJudges 配置热更新时调用，小于 1 的值按 1 处理
func (s *EvaluationService) SetRequiredJudges(n int) {
	if n < 1 {
		n = 1
	}
	s.requiredJudges.Store(int32(n))
}

func (s *EvaluationService) RequiredJudges() int {
	return int(s.requiredJudges.Load())
}

// RecordEvaluationReq 五项分数都必须出现，缺省不能当作 0 分
type RecordEvaluationReq struct {
	Strategy   *decimal.Decimal `json:"strategy" binding:"required"`
	Engagement *decimal.Decimal `json:"engagement" binding:"required"`
	Adequacy   *decimal.Decimal `json:"adequacy" binding:"required"`
	Execution  *decimal.Decimal `json:"execution" binding:"required"`
	Creativity *decimal.Decimal `json:"creativity" binding:"required"`
	Notes      string           `json:"notes"`
}

func (req RecordEvaluationReq) criteria() (scoring.Criteria, error) {
	if req.Strategy == nil || req.Engagement == nil || req.Adequacy == nil ||
		req.Execution == nil || req.Creativity == nil {
		return scoring.Criteria{}, util.ErrInvalidInput
	}
	c := scoring.Criteria{
		Strategy:   *req.Strategy,
		Engagement: *req.Engagement,
		Adequacy:   *req.Adequacy,
		Execution:  *req.Execution,
		Creativity: *req.Creativity,
	}
	if err := c.Validate(); err != nil {
		return scoring.Criteria{}, util.ErrScoreOutOfRange
	}
	return c, nil
}

type EvaluationResult struct {
	Evaluation *model.Evaluation `json:"evaluation"`
	Submission *model.Submission `json:"submission"`
	Completed  bool              `json:"completed"`
}

func criteriaOf(e model.Evaluation) scoring.Criteria {
	return scoring.Criteria{
		Strategy:   e.Strategy,
		Engagement: e.Engagement,
		Adequacy:   e.Adequacy,
		Execution:  e.Execution,
		Creativity: e.Creativity,
	}
}

// Record 追加一条评审。评审数达到 required_judges 时取各项平均分计算最终得分，
// 作品进入 evaluated；否则 paid 作品进入 evaluating。同一评委重复评审直接拒绝，不覆盖。
// 评委记录在事务内、作品校验之后创建，任何拒绝都不会留下数据
func (s *EvaluationService) Record(ctx context.Context, submissionID, judgeUserID string, req RecordEvaluationReq) (*EvaluationResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "evaluation.record")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", submissionID))

	criteria, err := req.criteria()
	if err != nil {
		return nil, rejected("record_evaluation", err)
	}
	notes := strings.TrimSpace(req.Notes)
	if utf8.RuneCountInString(notes) > util.MaxNotesLength {
		return nil, rejected("record_evaluation", util.ErrNotesTooLong)
	}

	required := s.RequiredJudges()
	result := &EvaluationResult{}
	var judge *model.Judge
	var judgeCreated bool

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := s.SubmissionRepo.WithTx(tx)
		evaluations := s.EvaluationRepo.WithTx(tx)

		submission, err := submissions.FindByIDForUpdate(ctx, submissionID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrSubmissionNotFound
			}
			return util.Infrastructure(err, "find submission")
		}
		if !submission.Status.Evaluable() {
			return util.ErrSubmissionNotEvaluable
		}

		judge, judgeCreated, err = s.JudgeRepo.WithTx(tx).GetOrCreate(ctx, judgeUserID)
		if err != nil {
			return util.Infrastructure(err, "get or create judge")
		}
		if !judge.Active {
			return util.ErrJudgeInactive
		}

		exists, err := evaluations.Exists(ctx, submission.ID, judge.ID)
		if err != nil {
			return util.Infrastructure(err, "check evaluation")
		}
		if exists {
			return util.ErrDuplicateEvaluation
		}

		evaluation := &model.Evaluation{
			SubmissionID: submission.ID,
			JudgeID:      judge.ID,
			Strategy:     criteria.Strategy,
			Engagement:   criteria.Engagement,
			Adequacy:     criteria.Adequacy,
			Execution:    criteria.Execution,
			Creativity:   criteria.Creativity,
		}
		if notes != "" {
			evaluation.Notes = &notes
		}
		if err := evaluations.Create(ctx, evaluation); err != nil {
			if repository.IsDuplicate(err) {
				return util.ErrDuplicateEvaluation
			}
			return util.Infrastructure(err, "create evaluation")
		}
		result.Evaluation = evaluation

		all, err := evaluations.ListBySubmission(ctx, submission.ID)
		if err != nil {
			return util.Infrastructure(err, "list evaluations")
		}

		if len(all) < required {
			if submission.Status == model.StatusPaid {
				if _, err := submissions.MarkEvaluating(ctx, submission.ID); err != nil {
					return util.Infrastructure(err, "mark evaluating")
				}
				submission.Status = model.StatusEvaluating
			}
			result.Submission = submission
			return nil
		}

		rubrics := make([]scoring.Criteria, 0, len(all))
		for _, e := range all {
			rubrics = append(rubrics, criteriaOf(e))
		}
		score, err := scoring.FinalScore(scoring.Average(rubrics), submission.AttemptNumber)
		if err != nil {
			return util.Infrastructure(err, "compute final score")
		}

		at := s.Now()
		rows, err := submissions.MarkEvaluated(ctx, submission.ID, score, at)
		if err != nil {
			return util.Infrastructure(err, "mark evaluated")
		}
		if rows == 0 {
			return util.ErrEvaluationConflict
		}

		submission.Status = model.StatusEvaluated
		submission.ScoreFinal = &score
		submission.EvaluatedAt = &at
		result.Submission = submission
		result.Completed = true
		return nil
	})
	if err != nil {
		return nil, rejected("record_evaluation", err)
	}

	if judgeCreated {
		logger.Named("evaluation").Info("judge provisioned", zap.String("judgeId", judge.ID), zap.String("userId", judgeUserID))
	}
	monitoring.EvaluationsRecorded.Inc()
	logger.Named("evaluation").Info("evaluation recorded",
		zap.String("submissionId", submissionID),
		zap.String("judgeId", judge.ID),
		zap.String("status", string(result.Submission.Status)),
	)

	if result.Completed {
		monitoring.SubmissionsEvaluated.Inc()
		logger.Named("evaluation").Info("submission evaluated",
			zap.String("submissionId", submissionID),
			zap.Int("attempt", result.Submission.AttemptNumber),
			zap.String("score", result.Submission.ScoreFinal.StringFixed(4)),
		)
		if s.Cache != nil {
			s.Cache.Invalidate(ctx, result.Submission.ChallengeID)
		}
	}
	return result, nil
}

// ListPending 当前评委尚未评审的已付款作品
func (s *EvaluationService) ListPending(ctx context.Context, judgeUserID string, limit int) ([]model.Submission, error) {
	if limit <= 0 || limit > DefaultPendingLimit {
		limit = DefaultPendingLimit
	}
	submissions, err := s.SubmissionRepo.ListPendingForJudge(ctx, judgeUserID, limit)
	if err != nil {
		return nil, util.Infrastructure(err, "list pending submissions")
	}
	return submissions, nil
}

func (s *EvaluationService) ListForSubmission(ctx context.Context, submissionID string) ([]model.Evaluation, error) {
	if _, err := s.SubmissionRepo.FindByID(ctx, submissionID); err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, util.Infrastructure(err, "find submission")
	}

	evaluations, err := s.EvaluationRepo.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, util.Infrastructure(err, "list evaluations")
	}
	return evaluations, nil
}
