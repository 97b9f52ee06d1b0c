package controller

import (
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/service"
	"mandabem_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService   *service.ChallengeService
	LeaderboardService *service.LeaderboardService
}

func NewChallengeController(challengeService *service.ChallengeService, leaderboardService *service.LeaderboardService) *ChallengeController {
	return &ChallengeController{
		ChallengeService:   challengeService,
		LeaderboardService: leaderboardService,
	}
}

// CreateLocation godoc
// @Summary 创建场地
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateLocationReq true "场地信息"
// @Success 201 {object} util.Response{data=model.Location}
// @Router /api/admin/locations [post]
func (c *ChallengeController) CreateLocation(ctx *gin.Context) {
	var req service.CreateLocationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	location, err := c.ChallengeService.CreateLocation(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, location)
}

// ListCities godoc
// @Summary 有开放场地的城市
// @Tags 挑战
// @Produce json
// @Success 200 {object} util.Response{data=[]string}
// @Router /api/locations/cities [get]
func (c *ChallengeController) ListCities(ctx *gin.Context) {
	cities, err := c.ChallengeService.ListCities(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cities)
}

// CreateChallenge godoc
// @Summary 创建挑战
// @Description publish=true 时直接进入 active，否则为草稿
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateChallengeReq true "挑战信息"
// @Success 201 {object} util.Response{data=model.Challenge}
// @Router /api/admin/challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req service.CreateChallengeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	challenge, err := c.ChallengeService.CreateChallenge(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

type UpdateChallengeStatusReq struct {
	Status model.ChallengeStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary 推进挑战状态
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "挑战ID"
// @Param body body UpdateChallengeStatusReq true "目标状态"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Router /api/admin/challenges/{id}/status [patch]
func (c *ChallengeController) UpdateStatus(ctx *gin.Context) {
	var req UpdateChallengeStatusReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	challenge, err := c.ChallengeService.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, challenge)
}

// ListChallenges godoc
// @Summary 挑战列表
// @Tags 挑战
// @Produce json
// @Param city query string false "城市"
// @Success 200 {object} util.Response{data=[]model.Challenge}
// @Router /api/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	challenges, err := c.ChallengeService.List(ctx.Request.Context(), ctx.Query("city"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// GetChallenge godoc
// @Summary 挑战详情
// @Tags 挑战
// @Produce json
// @Param id path string true "挑战ID"
// @Success 200 {object} util.Response{data=model.Challenge}
// @Router /api/challenges/{id} [get]
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	challenge, err := c.ChallengeService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	rules, err := challenge.RuleList()
	if err != nil {
		util.RespondError(ctx, util.Infrastructure(err, "decode challenge rules"))
		return
	}

	util.Success(ctx, gin.H{
		"challenge": challenge,
		"rules":     rules,
	})
}

// GetLeaderboard godoc
// @Summary 挑战排行榜
// @Tags 挑战
// @Produce json
// @Param id path string true "挑战ID"
// @Success 200 {object} util.Response{data=service.Leaderboard}
// @Router /api/challenges/{id}/leaderboard [get]
func (c *ChallengeController) GetLeaderboard(ctx *gin.Context) {
	board, err := c.LeaderboardService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, board)
}
