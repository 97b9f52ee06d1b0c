package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(v string) Criteria {
	d := decimal.RequireFromString(v)
	return Criteria{Strategy: d, Engagement: d, Adequacy: d, Execution: d, Creativity: d}
}

func TestFinalScore(t *testing.T) {
	cases := []struct {
		name     string
		criteria Criteria
		attempt  int
		want     string
	}{
		{"all ten first attempt", uniform("10"), 1, "9.5"},
		{"all ten third attempt", uniform("10"), 3, "8.5"},
		{"penalty capped", uniform("10"), 10, "7.0"},
		{"penalty cap reached exactly", uniform("10"), 6, "7.0"},
		{"all zero", uniform("0"), 1, "0"},
		{"floor at zero", uniform("1"), 10, "0"},
		{
			name: "mixed criteria",
			criteria: Criteria{
				Strategy:   decimal.RequireFromString("8"),
				Engagement: decimal.RequireFromString("7.5"),
				Adequacy:   decimal.RequireFromString("9"),
				Execution:  decimal.RequireFromString("6"),
				Creativity: decimal.RequireFromString("10"),
			},
			attempt: 2,
			// 2.4 + 2.25 + 1.8 + 0.6 + 0.5 = 7.55, minus 0.5
			want: "7.05",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FinalScore(tc.criteria, tc.attempt)
			require.NoError(t, err)
			assertDecimal(t, tc.want, got)
		})
	}
}

func TestFinalScoreRejectsAttemptBelowOne(t *testing.T) {
	_, err := FinalScore(uniform("10"), 0)
	assert.ErrorIs(t, err, ErrInvalidAttemptNumber)
}

func TestFinalScoreIsDeterministic(t *testing.T) {
	c := Criteria{
		Strategy:   decimal.RequireFromString("3.5"),
		Engagement: decimal.RequireFromString("9"),
		Adequacy:   decimal.RequireFromString("4.5"),
		Execution:  decimal.RequireFromString("7"),
		Creativity: decimal.RequireFromString("2"),
	}
	a, err := FinalScore(c, 4)
	require.NoError(t, err)
	b, err := FinalScore(c, 4)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestWeightsSumToNinetyFivePercent(t *testing.T) {
	sum := WeightStrategy.Add(WeightEngagement).Add(WeightAdequacy).Add(WeightExecution).Add(WeightCreativity)
	assertDecimal(t, "0.95", sum)
}

func TestPenalty(t *testing.T) {
	for attempt, want := range map[int]string{1: "0", 2: "0.5", 5: "2", 6: "2.5", 99: "2.5"} {
		got, err := Penalty(attempt)
		require.NoError(t, err)
		assertDecimal(t, want, got)
	}
}

func TestCriteriaValidate(t *testing.T) {
	assert.NoError(t, uniform("0").Validate())
	assert.NoError(t, uniform("10").Validate())
	assert.NoError(t, uniform("5.5").Validate())

	over := uniform("5")
	over.Creativity = decimal.RequireFromString("10.5")
	assert.ErrorIs(t, over.Validate(), ErrCriterionOutOfRange)

	under := uniform("5")
	under.Strategy = decimal.RequireFromString("-0.5")
	err := under.Validate()
	assert.ErrorIs(t, err, ErrCriterionOutOfRange)
	assert.Contains(t, err.Error(), "strategy")
}
