package service

import (
	"context"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MinPrize 挑战奖金下限
var MinPrize = decimal.NewFromInt(10)

type ChallengeService struct {
	ChallengeRepo *repository.ChallengeRepository
	LocationRepo  *repository.LocationRepository
}

func NewChallengeService(challengeRepo *repository.ChallengeRepository, locationRepo *repository.LocationRepository) *ChallengeService {
	return &ChallengeService{
		ChallengeRepo: challengeRepo,
		LocationRepo:  locationRepo,
	}
}

type CreateLocationReq struct {
	Name    string `json:"name" binding:"required,min=3,max=100"`
	Address string `json:"address" binding:"required,min=10,max=200"`
	City    string `json:"city" binding:"required,min=3,max=100"`
}

func (s *ChallengeService) CreateLocation(ctx context.Context, req CreateLocationReq) (*model.Location, error) {
	location := &model.Location{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		Active:  true,
	}
	if location.Name == "" || location.City == "" {
		return nil, util.ErrInvalidInput
	}
	if err := s.LocationRepo.Create(ctx, location); err != nil {
		return nil, util.Infrastructure(err, "create location")
	}
	return location, nil
}

func (s *ChallengeService) ListCities(ctx context.Context) ([]string, error) {
	cities, err := s.LocationRepo.ListActiveCities(ctx)
	if err != nil {
		return nil, util.Infrastructure(err, "list cities")
	}
	if cities == nil {
		cities = []string{}
	}
	return cities, nil
}

type CreateChallengeReq struct {
	Title       string          `json:"title" binding:"required,min=5,max=100"`
	Description string          `json:"description" binding:"required,min=20,max=500"`
	Theme       string          `json:"theme" binding:"required,min=3,max=100"`
	Prize       decimal.Decimal `json:"prize"`
	LocationID  string          `json:"locationId" binding:"required"`
	StartsAt    time.Time       `json:"startsAt" binding:"required"`
	EndsAt      time.Time       `json:"endsAt" binding:"required"`
	Rules       []string        `json:"rules" binding:"required,min=1,max=20,dive,required,max=500"`
	Publish     bool            `json:"publish"`
}

func (req CreateChallengeReq) validate() error {
	if req.Prize.LessThan(MinPrize) {
		return util.ErrInvalidInput
	}
	if !req.EndsAt.After(req.StartsAt) {
		return util.ErrInvalidInput
	}
	if len(req.Rules) == 0 || len(req.Rules) > util.MaxRules {
		return util.ErrInvalidInput
	}
	for _, rule := range req.Rules {
		if strings.TrimSpace(rule) == "" {
			return util.ErrInvalidInput
		}
	}
	return nil
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, req CreateChallengeReq) (*model.Challenge, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	location, err := s.LocationRepo.FindByID(ctx, req.LocationID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrLocationNotFound
		}
		return nil, util.Infrastructure(err, "find location")
	}

	status := model.ChallengeDraft
	if req.Publish {
		status = model.ChallengeActive
	}

	challenge := &model.Challenge{
		LocationID:  &location.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Theme:       strings.TrimSpace(req.Theme),
		Prize:       req.Prize.Round(2),
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      status,
	}
	rules := make([]string, 0, len(req.Rules))
	for _, rule := range req.Rules {
		rules = append(rules, strings.TrimSpace(rule))
	}
	if err := challenge.SetRules(rules); err != nil {
		return nil, util.ErrInvalidInput
	}

	if err := s.ChallengeRepo.Create(ctx, challenge); err != nil {
		return nil, util.Infrastructure(err, "create challenge")
	}
	challenge.Location = location

	logger.Log.Info("challenge created",
		zap.String("challengeId", challenge.ID),
		zap.String("status", string(challenge.Status)),
	)
	return challenge, nil
}

// UpdateStatus 管理员推进挑战状态，只能向前
func (s *ChallengeService) UpdateStatus(ctx context.Context, id string, next model.ChallengeStatus) (*model.Challenge, error) {
	if !next.Valid() {
		return nil, util.ErrInvalidInput
	}

	challenge, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !challenge.Status.CanMoveTo(next) {
		return nil, util.ErrInvalidStatusTransition
	}

	rows, err := s.ChallengeRepo.UpdateStatus(ctx, id, challenge.Status, next)
	if err != nil {
		return nil, util.Infrastructure(err, "update challenge status")
	}
	if rows == 0 {
		return nil, util.ErrStatusConflict
	}

	logger.Log.Info("challenge status changed",
		zap.String("challengeId", id),
		zap.String("from", string(challenge.Status)),
		zap.String("to", string(next)),
	)
	challenge.Status = next
	return challenge, nil
}

func (s *ChallengeService) List(ctx context.Context, city string) ([]model.Challenge, error) {
	challenges, err := s.ChallengeRepo.List(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, util.Infrastructure(err, "list challenges")
	}
	return challenges, nil
}

func (s *ChallengeService) Get(ctx context.Context, id string) (*model.Challenge, error) {
	challenge, err := s.ChallengeRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, util.Infrastructure(err, "find challenge")
	}
	return challenge, nil
}
