package scoring

import "github.com/shopspring/decimal"

// AveragePlaces is the rounding applied to each averaged criterion.
const AveragePlaces = 2

// Average returns the per-criterion arithmetic mean of evals rounded half away
// from zero to AveragePlaces. An empty slice yields all-zero criteria.
func Average(evals []Criteria) Criteria {
	if len(evals) == 0 {
		return Criteria{
			Strategy:   decimal.Zero,
			Engagement: decimal.Zero,
			Adequacy:   decimal.Zero,
			Execution:  decimal.Zero,
			Creativity: decimal.Zero,
		}
	}

	var sum Criteria
	for _, e := range evals {
		sum.Strategy = sum.Strategy.Add(e.Strategy)
		sum.Engagement = sum.Engagement.Add(e.Engagement)
		sum.Adequacy = sum.Adequacy.Add(e.Adequacy)
		sum.Execution = sum.Execution.Add(e.Execution)
		sum.Creativity = sum.Creativity.Add(e.Creativity)
	}

	n := decimal.NewFromInt(int64(len(evals)))
	mean := func(total decimal.Decimal) decimal.Decimal {
		return total.DivRound(n, AveragePlaces+8).Round(AveragePlaces)
	}

	return Criteria{
		Strategy:   mean(sum.Strategy),
		Engagement: mean(sum.Engagement),
		Adequacy:   mean(sum.Adequacy),
		Execution:  mean(sum.Execution),
		Creativity: mean(sum.Creativity),
	}
}
