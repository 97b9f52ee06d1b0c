package service

import (
	"context"
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/repository"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type ParticipantLoginReq struct {
	Email string `json:"email" binding:"required,email"`
	CPF   string `json:"cpf" binding:"required"`
	Name  string `json:"name" binding:"required,min=3,max=100"`
}

type AuthResult struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Created bool        `json:"created"`
}

// LoginParticipant 以 CPF 作为参赛者唯一标识：已存在则直接签发 token，否则注册
func (s *AuthService) LoginParticipant(ctx context.Context, req ParticipantLoginReq) (*AuthResult, error) {
	if !util.IsValidCPF(req.CPF) {
		return nil, util.ErrInvalidTaxID
	}
	cpf := util.NormalizeCPF(req.CPF)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.UserRepo.FindByCPF(ctx, cpf)
	if err == nil {
		return s.issue(user, false)
	}
	if !repository.IsNotFound(err) {
		return nil, util.Infrastructure(err, "find participant by cpf")
	}

	if _, err := s.UserRepo.FindByEmail(ctx, email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !repository.IsNotFound(err) {
		return nil, util.Infrastructure(err, "find participant by email")
	}

	user = &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: email,
		CPF:   &cpf,
		Role:  model.Participant,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, util.ErrEmailRegistered
		}
		return nil, util.Infrastructure(err, "create participant")
	}

	logger.Log.Info("participant registered", zap.String("userId", user.ID))
	return s.issue(user, true)
}

type StaffLoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) LoginStaff(ctx context.Context, req StaffLoginReq) (*AuthResult, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, util.Infrastructure(err, "find staff by email")
	}

	if user.Role == model.Participant || user.Password == "" {
		return nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	return s.issue(user, false)
}

type CreateStaffReq struct {
	Name     string         `json:"name" binding:"required,min=3,max=100"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=8"`
	Role     model.UserRole `json:"role" binding:"required,oneof=judge admin"`
}

func (s *AuthService) CreateStaff(ctx context.Context, req CreateStaffReq) (*model.User, error) {
	if req.Role != model.JudgeRole && req.Role != model.Admin {
		return nil, util.ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, util.Infrastructure(err, "hash staff password")
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, util.ErrEmailRegistered
		}
		return nil, util.Infrastructure(err, "create staff")
	}
	return user, nil
}

func (s *AuthService) issue(user *model.User, created bool) (*AuthResult, error) {
	token, err := util.IssueToken(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, util.Infrastructure(err, "sign token")
	}
	return &AuthResult{Token: token, User: user, Created: created}, nil
}
