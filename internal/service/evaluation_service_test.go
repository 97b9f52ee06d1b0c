package service

import (
	"context"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/testutil"
	"mandabem_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// paidSubmission 创建并确认支付第 attempt 次提交（之前的尝试也一并创建）
func paidSubmission(t *testing.T, f *fixture, challenge *model.Challenge, user *model.User, attempt int) *model.Submission {
	t.Helper()
	ctx := context.Background()

	var last *model.Submission
	for n := 1; n <= attempt; n++ {
		quote, err := ComputePrice(n)
		require.NoError(t, err)
		s, err := f.submissions.Create(ctx, user.ID, photoReq(challenge.ID, n, quote.Amount.String()))
		require.NoError(t, err)
		last = s
	}

	paid, err := f.submissions.ConfirmPayment(ctx, last.ID, user.ID, ConfirmPaymentReq{})
	require.NoError(t, err)
	return paid
}

func countEvaluations(t *testing.T, f *fixture, submissionID string) int {
	t.Helper()
	list, err := f.evaluations.ListForSubmission(context.Background(), submissionID)
	require.NoError(t, err)
	return len(list)
}

func TestRecordEvaluationSingleJudgeCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	result, err := f.evaluations.Record(ctx, submission.ID, judgeUser.ID, scores("10"))
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, model.StatusEvaluated, result.Submission.Status)
	require.NotNil(t, result.Submission.ScoreFinal)
	assertDecimal(t, "9.5", *result.Submission.ScoreFinal)
	assert.NotNil(t, result.Submission.EvaluatedAt)

	// 评委记录按需创建
	judge, err := f.evaluations.JudgeRepo.FindByUserID(ctx, judgeUser.ID)
	require.NoError(t, err)
	assert.True(t, judge.Active)
	assert.Equal(t, judge.ID, result.Evaluation.JudgeID)

	stored, err := f.submissions.SubmissionRepo.FindByID(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluated, stored.Status)
	require.NotNil(t, stored.ScoreFinal)
	assertDecimal(t, "9.5", *stored.ScoreFinal)
}

func TestRecordEvaluationAppliesAttemptPenalty(t *testing.T) {
	f := newFixture(t)
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 3)
	require.Equal(t, 3, submission.AttemptNumber)

	result, err := f.evaluations.Record(context.Background(), submission.ID, judgeUser.ID, scores("10"))
	require.NoError(t, err)
	assertDecimal(t, "8.5", *result.Submission.ScoreFinal)
}

func TestTwoJudgesWithEqualScores(t *testing.T) {
	f := newFixture(t)
	f.evaluations.SetRequiredJudges(2)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	first := testutil.CreateStaff(t, f.db, "Juiz 1", model.JudgeRole)
	second := testutil.CreateStaff(t, f.db, "Juiz 2", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	req := RecordEvaluationReq{
		Strategy:   decp("8"),
		Engagement: decp("7.5"),
		Adequacy:   decp("9"),
		Execution:  decp("6"),
		Creativity: decp("10"),
		Notes:      "boa composição",
	}

	r1, err := f.evaluations.Record(ctx, submission.ID, first.ID, req)
	require.NoError(t, err)
	assert.False(t, r1.Completed)
	assert.Equal(t, model.StatusEvaluating, r1.Submission.Status)
	assert.Nil(t, r1.Submission.ScoreFinal)

	r2, err := f.evaluations.Record(ctx, submission.ID, second.ID, req)
	require.NoError(t, err)
	assert.True(t, r2.Completed)
	assert.Equal(t, model.StatusEvaluated, r2.Submission.Status)
	// 两位评委分数相同，聚合后等于单人得分
	assertDecimal(t, "7.55", *r2.Submission.ScoreFinal)

	assert.NotEqual(t, r1.Evaluation.ID, r2.Evaluation.ID)
	assert.Equal(t, 2, countEvaluations(t, f, submission.ID))
}

func TestRequiredJudgesAveragesCriteria(t *testing.T) {
	f := newFixture(t)
	f.evaluations.SetRequiredJudges(2)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	first := testutil.CreateStaff(t, f.db, "Juiz 1", model.JudgeRole)
	second := testutil.CreateStaff(t, f.db, "Juiz 2", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	_, err := f.evaluations.Record(ctx, submission.ID, first.ID, scores("10"))
	require.NoError(t, err)
	result, err := f.evaluations.Record(ctx, submission.ID, second.ID, scores("0"))
	require.NoError(t, err)

	// 各项平均 5.0，加权 4.75
	assertDecimal(t, "4.75", *result.Submission.ScoreFinal)
}

func TestDuplicateEvaluationRejected(t *testing.T) {
	f := newFixture(t)
	f.evaluations.SetRequiredJudges(2)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	first, err := f.evaluations.Record(ctx, submission.ID, judgeUser.ID, scores("6"))
	require.NoError(t, err)

	_, err = f.evaluations.Record(ctx, submission.ID, judgeUser.ID, scores("9"))
	assert.ErrorIs(t, err, util.ErrDuplicateEvaluation)

	list, err := f.evaluations.ListForSubmission(ctx, submission.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.Evaluation.ID, list[0].ID)
	assertDecimal(t, "6", list[0].Strategy)
}

func TestRecordEvaluationGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)

	pending, err := f.submissions.Create(ctx, user.ID, photoReq(challenge.ID, 1, "7.00"))
	require.NoError(t, err)

	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, scores("8"))
	assert.ErrorIs(t, err, util.ErrSubmissionNotEvaluable)

	_, err = f.evaluations.Record(ctx, "missing", judgeUser.ID, scores("8"))
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	outOfRange := scores("8")
	outOfRange.Execution = decp("10.5")
	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, outOfRange)
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)

	negative := scores("8")
	negative.Strategy = decp("-1")
	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, negative)
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)

	longNotes := scores("8")
	longNotes.Notes = strings.Repeat("n", util.MaxNotesLength+1)
	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, longNotes)
	assert.ErrorIs(t, err, util.ErrNotesTooLong)

	assert.Equal(t, 0, countEvaluations(t, f, pending.ID))
}

func TestEvaluatedSubmissionIsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	first := testutil.CreateStaff(t, f.db, "Juiz 1", model.JudgeRole)
	second := testutil.CreateStaff(t, f.db, "Juiz 2", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	_, err := f.evaluations.Record(ctx, submission.ID, first.ID, scores("7"))
	require.NoError(t, err)

	_, err = f.evaluations.Record(ctx, submission.ID, second.ID, scores("9"))
	assert.ErrorIs(t, err, util.ErrSubmissionNotEvaluable)
	assert.Equal(t, 1, countEvaluations(t, f, submission.ID))
}

func TestInactiveJudgeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	judge, _, err := f.evaluations.JudgeRepo.GetOrCreate(ctx, judgeUser.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&model.Judge{}).Where("id = ?", judge.ID).Update("active", false).Error)

	_, err = f.evaluations.Record(ctx, submission.ID, judgeUser.ID, scores("8"))
	assert.ErrorIs(t, err, util.ErrJudgeInactive)
}

func TestJudgeGetOrCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)

	j1, created, err := f.evaluations.JudgeRepo.GetOrCreate(ctx, judgeUser.ID)
	require.NoError(t, err)
	assert.True(t, created)

	j2, created, err := f.evaluations.JudgeRepo.GetOrCreate(ctx, judgeUser.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, j1.ID, j2.ID)

	var n int64
	require.NoError(t, f.db.Model(&model.Judge{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestListPendingForJudge(t *testing.T) {
	f := newFixture(t)
	f.evaluations.SetRequiredJudges(2)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	ana := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	bia := testutil.CreateParticipant(t, f.db, "Bia", testutil.ValidCPFs[1])
	caio := testutil.CreateParticipant(t, f.db, "Caio", testutil.ValidCPFs[2])
	first := testutil.CreateStaff(t, f.db, "Juiz 1", model.JudgeRole)
	second := testutil.CreateStaff(t, f.db, "Juiz 2", model.JudgeRole)

	s1 := paidSubmission(t, f, challenge, ana, 1)
	s2 := paidSubmission(t, f, challenge, bia, 1)
	// 未付款的不出现在列表中
	_, err := f.submissions.Create(ctx, caio.ID, photoReq(challenge.ID, 1, "7.00"))
	require.NoError(t, err)

	_, err = f.evaluations.Record(ctx, s1.ID, first.ID, scores("8"))
	require.NoError(t, err)

	pendingFirst, err := f.evaluations.ListPending(ctx, first.ID, 0)
	require.NoError(t, err)
	require.Len(t, pendingFirst, 1)
	assert.Equal(t, s2.ID, pendingFirst[0].ID)

	pendingSecond, err := f.evaluations.ListPending(ctx, second.ID, 10)
	require.NoError(t, err)
	assert.Len(t, pendingSecond, 2)
}

func TestSetRequiredJudges(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 1, f.evaluations.RequiredJudges())

	f.evaluations.SetRequiredJudges(3)
	assert.Equal(t, 3, f.evaluations.RequiredJudges())

	f.evaluations.SetRequiredJudges(0)
	assert.Equal(t, 1, f.evaluations.RequiredJudges())
}

func TestRecordEvaluationRequiresEveryCriterion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)
	submission := paidSubmission(t, f, challenge, user, 1)

	partial := scores("10")
	partial.Creativity = nil
	_, err := f.evaluations.Record(ctx, submission.ID, judgeUser.ID, partial)
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	stored, err := f.submissions.SubmissionRepo.FindByID(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, stored.Status)
	assert.Nil(t, stored.ScoreFinal)
	assert.Equal(t, 0, countEvaluations(t, f, submission.ID))

	// 显式给出的 0 分是合法评分
	zero := scores("10")
	zero.Creativity = decp("0")
	result, err := f.evaluations.Record(ctx, submission.ID, judgeUser.ID, zero)
	require.NoError(t, err)
	assertDecimal(t, "9", *result.Submission.ScoreFinal)
}

func TestRejectedEvaluationDoesNotProvisionJudge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	challenge := testutil.CreateChallenge(t, f.db, model.ChallengeActive)
	user := testutil.CreateParticipant(t, f.db, "Ana", testutil.ValidCPFs[0])
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)

	judges := func() int64 {
		var n int64
		require.NoError(t, f.db.Model(&model.Judge{}).Where("user_id = ?", judgeUser.ID).Count(&n).Error)
		return n
	}

	_, err := f.evaluations.Record(ctx, "missing", judgeUser.ID, scores("8"))
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
	assert.Equal(t, int64(0), judges())

	pending, err := f.submissions.Create(ctx, user.ID, photoReq(challenge.ID, 1, "7.00"))
	require.NoError(t, err)
	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, scores("8"))
	assert.ErrorIs(t, err, util.ErrSubmissionNotEvaluable)
	assert.Equal(t, int64(0), judges())

	_, err = f.submissions.ConfirmPayment(ctx, pending.ID, user.ID, ConfirmPaymentReq{})
	require.NoError(t, err)
	_, err = f.evaluations.Record(ctx, pending.ID, judgeUser.ID, scores("8"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), judges())
}

func TestJudgeGetOrCreateInsideTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	judgeUser := testutil.CreateStaff(t, f.db, "Juiz", model.JudgeRole)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		repo := f.evaluations.JudgeRepo.WithTx(tx)
		j1, created, err := repo.GetOrCreate(ctx, judgeUser.ID)
		require.NoError(t, err)
		assert.True(t, created)

		j2, created, err := repo.GetOrCreate(ctx, judgeUser.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, j1.ID, j2.ID)
		return nil
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, f.db.Model(&model.Judge{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
