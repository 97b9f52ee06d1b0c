package service

import (
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/testutil"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fixture 组装与 app 一致的服务依赖
type fixture struct {
	db          *gorm.DB
	redis       *miniredis.Miniredis
	auth        *AuthService
	challenges  *ChallengeService
	submissions *SubmissionService
	evaluations *EvaluationService
	leaderboard *LeaderboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := repository.NewUserRepository(db)
	locations := repository.NewLocationRepository(db)
	challenges := repository.NewChallengeRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	judges := repository.NewJudgeRepository(db)
	evaluations := repository.NewEvaluationRepository(db)

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpireTime: time.Hour},
		Contest: config.ContestConfig{RequiredJudges: 1, LeaderboardCacheSeconds: 60},
	}

	f := &fixture{db: db, redis: mr}
	f.auth = NewAuthService(users, cfg)
	f.challenges = NewChallengeService(challenges, locations)
	f.leaderboard = NewLeaderboardService(submissions, challenges, rdb, cfg.Contest.LeaderboardCacheTTL())
	f.submissions = NewSubmissionService(db, submissions, challenges, users, NewMockGateway())
	f.evaluations = NewEvaluationService(db, submissions, evaluations, judges, f.leaderboard, cfg.Contest.RequiredJudges)
	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func scores(v string) RecordEvaluationReq {
	return RecordEvaluationReq{
		Strategy:   decp(v),
		Engagement: decp(v),
		Adequacy:   decp(v),
		Execution:  decp(v),
		Creativity: decp(v),
	}
}
