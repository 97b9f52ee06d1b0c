package controller

import (
	"mandabem_backend/internal/service"
	"mandabem_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type JudgeController struct {
	EvaluationService *service.EvaluationService
}

func NewJudgeController(evaluationService *service.EvaluationService) *JudgeController {
	return &JudgeController{EvaluationService: evaluationService}
}

// ListPending godoc
// @Summary 待评审作品
// @Description 已付款且当前评委尚未评审的作品，按提交时间先后
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/judge/submissions/pending [get]
func (c *JudgeController) ListPending(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.ParsePositiveInt(ctx.Query("limit"), service.DefaultPendingLimit)
	submissions, err := c.EvaluationService.ListPending(ctx.Request.Context(), user.UserID, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// RecordEvaluation godoc
// @Summary 提交评审
// @Description 五项评分均在 [0,10]，同一评委对同一作品只能评审一次
// @Tags 评审
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作品ID"
// @Param body body service.RecordEvaluationReq true "评分"
// @Success 201 {object} util.Response{data=service.EvaluationResult}
// @Router /api/judge/submissions/{id}/evaluations [post]
func (c *JudgeController) RecordEvaluation(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RecordEvaluationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	result, err := c.EvaluationService.Record(ctx.Request.Context(), ctx.Param("id"), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// ListEvaluations godoc
// @Summary 作品的全部评审
// @Tags 评审
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作品ID"
// @Success 200 {object} util.Response{data=[]model.Evaluation}
// @Router /api/judge/submissions/{id}/evaluations [get]
func (c *JudgeController) ListEvaluations(ctx *gin.Context) {
	evaluations, err := c.EvaluationService.ListForSubmission(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, evaluations)
}
