package scoring

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidAttemptNumber = errors.New("scoring: attempt number must be >= 1")

var (
	// BasePrice 第一次提交的费用
	BasePrice = decimal.RequireFromString("7.00")
	// PriceIncrement 之后每次提交在上一次基础上增加的费用
	PriceIncrement = decimal.RequireFromString("2.10")
	// PriceTolerance 校验客户端声明金额时允许的误差
	PriceTolerance = decimal.RequireFromString("0.01")
)

// Price returns BasePrice + PriceIncrement*(attempt-1). Attempts below 1 are a
// caller bug and are rejected rather than clamped.
func Price(attempt int) (decimal.Decimal, error) {
	if attempt < 1 {
		return decimal.Zero, ErrInvalidAttemptNumber
	}
	return BasePrice.Add(PriceIncrement.Mul(decimal.NewFromInt(int64(attempt - 1)))), nil
}

// PriceMatches reports whether claimed is within PriceTolerance of Price(attempt).
func PriceMatches(attempt int, claimed decimal.Decimal) bool {
	expected, err := Price(attempt)
	if err != nil {
		return false
	}
	return claimed.Sub(expected).Abs().LessThanOrEqual(PriceTolerance)
}
