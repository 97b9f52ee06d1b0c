package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ChallengeStatus string

const (
	ChallengeDraft      ChallengeStatus = "draft"
	ChallengeActive     ChallengeStatus = "active"
	ChallengeEvaluating ChallengeStatus = "evaluating"
	ChallengeFinished   ChallengeStatus = "finished"
)

var challengeStatusOrder = map[ChallengeStatus]int{
	ChallengeDraft:      0,
	ChallengeActive:     1,
	ChallengeEvaluating: 2,
	ChallengeFinished:   3,
}

func (s ChallengeStatus) Valid() bool {
	_, ok := challengeStatusOrder[s]
	return ok
}

// CanMoveTo 只允许向前流转（可跳过中间状态）
func (s ChallengeStatus) CanMoveTo(next ChallengeStatus) bool {
	from, ok := challengeStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := challengeStatusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// swagger:model Challenge
type Challenge struct {
	UUIDBase
	LocationID  *string         `gorm:"index;type:varchar(36)" json:"locationId"`
	Location    *Location       `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Title       string          `gorm:"size:100;not null" json:"title"`
	Description string          `gorm:"size:500;not null" json:"description"`
	Theme       string          `gorm:"size:100;not null" json:"theme"`
	Prize       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"prize"`
	Rules       datatypes.JSON  `json:"rules"`
	StartsAt    time.Time       `gorm:"not null" json:"startsAt"`
	EndsAt      time.Time       `gorm:"index;not null" json:"endsAt"`
	Status      ChallengeStatus `gorm:"size:20;default:'draft';index" json:"status"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// RuleList 解码规则列表，列内容损坏时返回错误
func (c *Challenge) RuleList() ([]string, error) {
	var rules []string
	if len(c.Rules) == 0 {
		return rules, nil
	}
	if err := json.Unmarshal(c.Rules, &rules); err != nil {
		return nil, fmt.Errorf("challenge %s: decode rules: %w", c.ID, err)
	}
	return rules, nil
}

func (c *Challenge) SetRules(rules []string) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	c.Rules = datatypes.JSON(raw)
	return nil
}

// AcceptsSubmissionsAt 是否在开放时间窗内（状态由调用方另行判断）
func (c *Challenge) AcceptsSubmissionsAt(now time.Time) bool {
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}
