package model

import "github.com/shopspring/decimal"

// swagger:model Evaluation
// 每个评委对同一作品只能有一条评审记录
type Evaluation struct {
	UUIDBase
	SubmissionID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_evaluation_judge,priority:1" json:"submissionId"`
	JudgeID      string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_evaluation_judge,priority:2" json:"judgeId"`
	Strategy     decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"strategy"`
	Engagement   decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"engagement"`
	Adequacy     decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"adequacy"`
	Execution    decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"execution"`
	Creativity   decimal.Decimal `gorm:"type:decimal(4,2);not null" json:"creativity"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
