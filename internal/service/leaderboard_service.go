package service

import (
	"context"
	"encoding/json"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const leaderboardKeyPrefix = "leaderboard:"

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	repository.LeaderboardRow
}

type LeaderboardStats struct {
	Count        int             `json:"count"`
	AverageScore decimal.Decimal `json:"averageScore"`
	TopScore     decimal.Decimal `json:"topScore"`
}

type Leaderboard struct {
	ChallengeID string             `json:"challengeId"`
	Entries     []LeaderboardEntry `json:"entries"`
	Stats       LeaderboardStats   `json:"stats"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// LeaderboardService Redis 为空或不可用时直接查库
type LeaderboardService struct {
	SubmissionRepo *repository.SubmissionRepository
	ChallengeRepo  *repository.ChallengeRepository
	Redis          *redis.Client
	TTL            time.Duration
}

func NewLeaderboardService(
	submissionRepo *repository.SubmissionRepository,
	challengeRepo *repository.ChallengeRepository,
	rdb *redis.Client,
	ttl time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		SubmissionRepo: submissionRepo,
		ChallengeRepo:  challengeRepo,
		Redis:          rdb,
		TTL:            ttl,
	}
}

func leaderboardKey(challengeID string) string {
	return leaderboardKeyPrefix + challengeID
}

func (s *LeaderboardService) Get(ctx context.Context, challengeID string) (*Leaderboard, error) {
	if board := s.fromCache(ctx, challengeID); board != nil {
		return board, nil
	}

	if _, err := s.ChallengeRepo.FindByID(ctx, challengeID); err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, util.Infrastructure(err, "find challenge")
	}

	rows, err := s.SubmissionRepo.Leaderboard(ctx, challengeID, 0)
	if err != nil {
		return nil, util.Infrastructure(err, "load leaderboard")
	}

	board := BuildLeaderboard(challengeID, rows, time.Now())
	s.store(ctx, board)
	return board, nil
}

// BuildLeaderboard rows 已按得分降序、评审时间升序排好，名次从 1 开始
func BuildLeaderboard(challengeID string, rows []repository.LeaderboardRow, now time.Time) *Leaderboard {
	board := &Leaderboard{
		ChallengeID: challengeID,
		Entries:     make([]LeaderboardEntry, 0, len(rows)),
		GeneratedAt: now,
		Stats: LeaderboardStats{
			AverageScore: decimal.Zero,
			TopScore:     decimal.Zero,
		},
	}

	sum := decimal.Zero
	for i, row := range rows {
		board.Entries = append(board.Entries, LeaderboardEntry{Rank: i + 1, LeaderboardRow: row})
		sum = sum.Add(row.ScoreFinal)
		if row.ScoreFinal.GreaterThan(board.Stats.TopScore) {
			board.Stats.TopScore = row.ScoreFinal
		}
	}

	board.Stats.Count = len(rows)
	if len(rows) > 0 {
		board.Stats.AverageScore = sum.DivRound(decimal.NewFromInt(int64(len(rows))), 4).Round(2)
	}
	return board
}

func (s *LeaderboardService) fromCache(ctx context.Context, challengeID string) *Leaderboard {
	if s.Redis == nil {
		return nil
	}

	raw, err := s.Redis.Get(ctx, leaderboardKey(challengeID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Named("leaderboard").Warn("leaderboard cache read failed", zap.String("challengeId", challengeID), zap.Error(err))
		}
		return nil
	}

	var board Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		logger.Named("leaderboard").Warn("leaderboard cache corrupted", zap.String("challengeId", challengeID), zap.Error(err))
		return nil
	}
	return &board
}

func (s *LeaderboardService) store(ctx context.Context, board *Leaderboard) {
	if s.Redis == nil || s.TTL <= 0 {
		return
	}

	raw, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, leaderboardKey(board.ChallengeID), raw, s.TTL).Err(); err != nil {
		logger.Named("leaderboard").Warn("leaderboard cache write failed", zap.String("challengeId", board.ChallengeID), zap.Error(err))
	}
}

// Invalidate 缓存删除失败只记录日志，过期后自然恢复
func (s *LeaderboardService) Invalidate(ctx context.Context, challengeID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, leaderboardKey(challengeID)).Err(); err != nil {
		logger.Named("leaderboard").Warn("leaderboard cache invalidate failed", zap.String("challengeId", challengeID), zap.Error(err))
	}
}
