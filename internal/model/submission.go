package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ContentKind string

const (
	ContentPhoto ContentKind = "photo"
	ContentText  ContentKind = "text"
)

type SubmissionStatus string

const (
	StatusPendingPayment SubmissionStatus = "pending_payment"
	StatusPaid           SubmissionStatus = "paid"
	StatusEvaluating     SubmissionStatus = "evaluating"
	StatusEvaluated      SubmissionStatus = "evaluated"
)

// Evaluable 评委只能评审已付款且未完成评审的作品
func (s SubmissionStatus) Evaluable() bool {
	return s == StatusPaid || s == StatusEvaluating
}

// swagger:model Submission
// (user_id, challenge_id, attempt_number) 唯一，用于兜住并发提交时尝试次数的竞争
type Submission struct {
	UUIDBase
	ChallengeID   string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_attempt,priority:2;index" json:"challengeId"`
	UserID        string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_attempt,priority:1" json:"userId"`
	ContentKind   ContentKind      `gorm:"column:content_type;size:10;not null" json:"contentType"`
	ContentURL    *string          `gorm:"size:500" json:"contentUrl,omitempty"`
	ContentText   *string          `gorm:"type:text" json:"contentText,omitempty"`
	PaymentAmount decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"paymentAmount"`
	AttemptNumber int              `gorm:"not null;uniqueIndex:idx_submission_attempt,priority:3" json:"attemptNumber"`
	Status        SubmissionStatus `gorm:"size:20;default:'pending_payment';index" json:"status"`
	PaymentID     *string          `gorm:"size:100" json:"paymentId,omitempty"`
	ScoreFinal    *decimal.Decimal `gorm:"type:decimal(10,4)" json:"scoreFinal,omitempty"`
	EvaluatedAt   *time.Time       `json:"evaluatedAt,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
