package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrCriterionOutOfRange = errors.New("scoring: criterion out of range")

var (
	WeightStrategy   = decimal.RequireFromString("0.30")
	WeightEngagement = decimal.RequireFromString("0.30")
	WeightAdequacy   = decimal.RequireFromString("0.20")
	WeightExecution  = decimal.RequireFromString("0.10")
	// WeightCreativity 五项权重之和为 0.95，历史成绩都按此计算，不要归一化
	WeightCreativity = decimal.RequireFromString("0.05")

	PenaltyPerAttempt = decimal.RequireFromString("0.5")
	MaxPenalty        = decimal.RequireFromString("2.5")

	MinCriterion = decimal.Zero
	MaxCriterion = decimal.NewFromInt(10)
)

// Criteria is one rubric: five scores, each expected in [0,10].
type Criteria struct {
	Strategy   decimal.Decimal `json:"strategy"`
	Engagement decimal.Decimal `json:"engagement"`
	Adequacy   decimal.Decimal `json:"adequacy"`
	Execution  decimal.Decimal `json:"execution"`
	Creativity decimal.Decimal `json:"creativity"`
}

func (c Criteria) named() []struct {
	name  string
	value decimal.Decimal
} {
	return []struct {
		name  string
		value decimal.Decimal
	}{
		{"strategy", c.Strategy},
		{"engagement", c.Engagement},
		{"adequacy", c.Adequacy},
		{"execution", c.Execution},
		{"creativity", c.Creativity},
	}
}

// Validate checks every criterion is inside [MinCriterion, MaxCriterion].
// The 0.5 granularity used by the judging UI is not enforced.
func (c Criteria) Validate() error {
	for _, n := range c.named() {
		if n.value.LessThan(MinCriterion) || n.value.GreaterThan(MaxCriterion) {
			return fmt.Errorf("%w: %s=%s", ErrCriterionOutOfRange, n.name, n.value.String())
		}
	}
	return nil
}

// Weighted is the rubric sum before any penalty.
func (c Criteria) Weighted() decimal.Decimal {
	return c.Strategy.Mul(WeightStrategy).
		Add(c.Engagement.Mul(WeightEngagement)).
		Add(c.Adequacy.Mul(WeightAdequacy)).
		Add(c.Execution.Mul(WeightExecution)).
		Add(c.Creativity.Mul(WeightCreativity))
}

// Penalty is 0.5 per attempt after the first, capped at MaxPenalty.
func Penalty(attempt int) (decimal.Decimal, error) {
	if attempt < 1 {
		return decimal.Zero, ErrInvalidAttemptNumber
	}
	return decimal.Min(PenaltyPerAttempt.Mul(decimal.NewFromInt(int64(attempt-1))), MaxPenalty), nil
}

// FinalScore computes max(Weighted - Penalty(attempt), 0). Range checking of
// the criteria belongs to whoever accepts the evaluation; nothing is clamped here.
func FinalScore(c Criteria, attempt int) (decimal.Decimal, error) {
	penalty, err := Penalty(attempt)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(c.Weighted().Sub(penalty), decimal.Zero), nil
}
