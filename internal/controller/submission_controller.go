package controller

import (
	"mandabem_backend/internal/service"
	"mandabem_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// CreateSubmission godoc
// @Summary 提交作品
// @Description 尝试次数必须为已有提交数+1，金额必须与该次尝试的价格一致
// @Tags 作品
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateSubmissionReq true "作品内容"
// @Success 201 {object} util.Response{data=model.Submission}
// @Router /api/submissions [post]
func (c *SubmissionController) CreateSubmission(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSubmissionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	submission, err := c.SubmissionService.Create(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, submission)
}

// ConfirmPayment godoc
// @Summary 确认支付
// @Tags 作品
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "作品ID"
// @Param body body service.ConfirmPaymentReq false "支付方式 pix/credit_card/debit_card"
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /api/submissions/{id}/payment [post]
func (c *SubmissionController) ConfirmPayment(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ConfirmPaymentReq
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, util.ErrInvalidInput.Code)
			return
		}
	}

	submission, err := c.SubmissionService.ConfirmPayment(ctx.Request.Context(), ctx.Param("id"), user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// ListMine godoc
// @Summary 我的作品
// @Tags 作品
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Submission}
// @Router /api/submissions/mine [get]
func (c *SubmissionController) ListMine(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submissions, err := c.SubmissionService.ListMine(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, submissions)
}

// Quote godoc
// @Summary 下一次提交的报价
// @Tags 作品
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "挑战ID"
// @Success 200 {object} util.Response{data=service.PriceQuote}
// @Router /api/challenges/{id}/quote [get]
func (c *SubmissionController) Quote(ctx *gin.Context) {
	user := util.CurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quote, err := c.SubmissionService.Quote(ctx.Request.Context(), ctx.Param("id"), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quote)
}
