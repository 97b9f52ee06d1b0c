package service

import (
	"context"
	"errors"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/scoring"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"mandabem_backend/pkg/monitoring"
	"mandabem_backend/pkg/tracing"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmissionService struct {
	DB             *gorm.DB
	SubmissionRepo *repository.SubmissionRepository
	ChallengeRepo  *repository.ChallengeRepository
	UserRepo       *repository.UserRepository
	Gateway        PaymentGateway
	Now            func() time.Time
}

func NewSubmissionService(
	db *gorm.DB,
	submissionRepo *repository.SubmissionRepository,
	challengeRepo *repository.ChallengeRepository,
	userRepo *repository.UserRepository,
	gateway PaymentGateway,
) *SubmissionService {
	return &SubmissionService{
		DB:             db,
		SubmissionRepo: submissionRepo,
		ChallengeRepo:  challengeRepo,
		UserRepo:       userRepo,
		Gateway:        gateway,
		Now:            time.Now,
	}
}

type CreateSubmissionReq struct {
	ChallengeID   string            `json:"challengeId" binding:"required"`
	ContentType   model.ContentKind `json:"contentType" binding:"required"`
	ContentURL    string            `json:"contentUrl"`
	ContentText   string            `json:"contentText"`
	AttemptNumber int               `json:"attemptNumber"`
	PaymentAmount decimal.Decimal   `json:"paymentAmount"`
}

// content 恰好一种内容非空，且与声明的类型一致
func (req CreateSubmissionReq) content() (url, text *string, err error) {
	u := strings.TrimSpace(req.ContentURL)
	t := strings.TrimSpace(req.ContentText)

	switch req.ContentType {
	case model.ContentPhoto:
		if u == "" {
			return nil, nil, util.ErrContentMissing
		}
		if t != "" {
			return nil, nil, util.ErrInvalidContentKind
		}
		return &u, nil, nil
	case model.ContentText:
		if t == "" {
			return nil, nil, util.ErrContentMissing
		}
		if u != "" {
			return nil, nil, util.ErrInvalidContentKind
		}
		if utf8.RuneCountInString(t) > util.MaxTextLength {
			return nil, nil, util.ErrContentTooLong
		}
		return nil, &t, nil
	default:
		return nil, nil, util.ErrInvalidContentKind
	}
}

// Create 所有校验与写入在同一事务内完成，任何校验失败都不会留下数据。
// 并发提交同一尝试次数时由 (user_id, challenge_id, attempt_number) 唯一索引兜底
func (s *SubmissionService) Create(ctx context.Context, userID string, req CreateSubmissionReq) (*model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "submission.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("challenge.id", req.ChallengeID),
		attribute.Int("submission.attempt", req.AttemptNumber),
	)

	var submission *model.Submission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		challenge, err := s.ChallengeRepo.WithTx(tx).FindByID(ctx, req.ChallengeID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrChallengeNotFound
			}
			return util.Infrastructure(err, "find challenge")
		}
		if challenge.Status != model.ChallengeActive {
			return util.ErrChallengeNotActive
		}
		if !challenge.AcceptsSubmissionsAt(s.Now()) {
			return util.ErrChallengeClosed
		}

		participant, err := s.UserRepo.WithTx(tx).FindByID(ctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrParticipantNotFound
			}
			return util.Infrastructure(err, "find participant")
		}
		if participant.Role != model.Participant {
			return util.ErrParticipantNotFound
		}

		repo := s.SubmissionRepo.WithTx(tx)
		prior, err := repo.CountByUserAndChallenge(ctx, userID, challenge.ID)
		if err != nil {
			return util.Infrastructure(err, "count submissions")
		}
		if int64(req.AttemptNumber) != prior+1 {
			return util.ErrAttemptNumberMismatch
		}
		if !scoring.PriceMatches(req.AttemptNumber, req.PaymentAmount) {
			return util.ErrPaymentAmountMismatch
		}

		url, text, err := req.content()
		if err != nil {
			return err
		}

		submission = &model.Submission{
			ChallengeID:   challenge.ID,
			UserID:        userID,
			ContentKind:   req.ContentType,
			ContentURL:    url,
			ContentText:   text,
			PaymentAmount: req.PaymentAmount.Round(2),
			AttemptNumber: req.AttemptNumber,
			Status:        model.StatusPendingPayment,
		}
		if err := repo.Create(ctx, submission); err != nil {
			if repository.IsDuplicate(err) {
				return util.ErrAttemptConflict
			}
			return util.Infrastructure(err, "create submission")
		}
		return nil
	})
	if err != nil {
		return nil, rejected("create_submission", err)
	}

	monitoring.SubmissionsCreated.Inc()
	logger.Named("submission").Info("submission created",
		zap.String("submissionId", submission.ID),
		zap.String("challengeId", submission.ChallengeID),
		zap.String("userId", userID),
		zap.Int("attempt", submission.AttemptNumber),
		zap.String("amount", submission.PaymentAmount.StringFixed(2)),
	)
	return submission, nil
}

type ConfirmPaymentReq struct {
	Method string `json:"method"`
}

// ConfirmPayment pending_payment -> paid。重复确认会被拒绝而不是静默成功，
// 条件更新未命中说明有并发确认抢先完成
func (s *SubmissionService) ConfirmPayment(ctx context.Context, submissionID, userID string, req ConfirmPaymentReq) (*model.Submission, error) {
	ctx, span := tracing.Tracer.Start(ctx, "submission.confirm_payment")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", submissionID))

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = util.PaymentPix
	}
	if !util.ValidPaymentMethod(method) {
		return nil, rejected("confirm_payment", util.ErrInvalidPaymentMethod)
	}

	submission, err := s.SubmissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, rejected("confirm_payment", util.ErrSubmissionNotFound)
		}
		return nil, util.Infrastructure(err, "find submission")
	}
	// 不暴露他人作品的存在
	if submission.UserID != userID {
		return nil, rejected("confirm_payment", util.ErrSubmissionNotFound)
	}
	if submission.Status != model.StatusPendingPayment {
		return nil, rejected("confirm_payment", util.ErrPaymentNotPending)
	}

	reference, err := s.Gateway.Charge(ctx, submission, method)
	if err != nil {
		return nil, util.Infrastructure(err, "charge payment")
	}

	rows, err := s.SubmissionRepo.ConfirmPayment(ctx, submissionID, userID, reference)
	if err != nil {
		return nil, util.Infrastructure(err, "confirm payment")
	}
	if rows == 0 {
		return nil, rejected("confirm_payment", util.ErrPaymentConflict)
	}

	submission.Status = model.StatusPaid
	submission.PaymentID = &reference

	monitoring.PaymentsConfirmed.WithLabelValues(method).Inc()
	logger.Named("submission").Info("payment confirmed",
		zap.String("submissionId", submissionID),
		zap.String("userId", userID),
		zap.String("method", method),
		zap.String("paymentId", reference),
	)
	return submission, nil
}

func (s *SubmissionService) ListMine(ctx context.Context, userID string) ([]model.Submission, error) {
	submissions, err := s.SubmissionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, util.Infrastructure(err, "list submissions")
	}
	return submissions, nil
}

type PriceQuote struct {
	AttemptNumber int             `json:"attemptNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

// ComputePrice 包装定价函数，尝试次数从 1 开始
func ComputePrice(attempt int) (*PriceQuote, error) {
	amount, err := scoring.Price(attempt)
	if err != nil {
		return nil, util.ErrInvalidAttemptNumber
	}
	return &PriceQuote{AttemptNumber: attempt, Amount: amount}, nil
}

// Quote 参赛者在某挑战下一次提交的尝试次数和应付金额
func (s *SubmissionService) Quote(ctx context.Context, challengeID, userID string) (*PriceQuote, error) {
	if _, err := s.ChallengeRepo.FindByID(ctx, challengeID); err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, util.Infrastructure(err, "find challenge")
	}

	prior, err := s.SubmissionRepo.CountByUserAndChallenge(ctx, userID, challengeID)
	if err != nil {
		return nil, util.Infrastructure(err, "count submissions")
	}
	return ComputePrice(int(prior) + 1)
}

// rejected 统计被校验拦截的操作，基础设施错误不计入
func rejected(operation string, err error) error {
	var e *util.Error
	if errors.As(err, &e) && e.Kind != util.KindInfrastructure {
		monitoring.GuardRejections.WithLabelValues(operation, e.Code).Inc()
	}
	return err
}
