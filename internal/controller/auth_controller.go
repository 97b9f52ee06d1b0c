package controller

import (
	"mandabem_backend/internal/service"
	"mandabem_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// ParticipantLogin godoc
// @Summary 参赛者登录
// @Description 以 CPF 识别参赛者，首次登录自动注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.ParticipantLoginReq true "参赛者信息"
// @Success 200 {object} util.Response{data=service.AuthResult}
// @Router /api/auth/participants [post]
func (c *AuthController) ParticipantLogin(ctx *gin.Context) {
	var req service.ParticipantLoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	result, err := c.AuthService.LoginParticipant(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if result.Created {
		util.Created(ctx, result)
		return
	}
	util.Success(ctx, result)
}

// StaffLogin godoc
// @Summary 评委/管理员登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body service.StaffLoginReq true "邮箱和密码"
// @Success 200 {object} util.Response{data=service.AuthResult}
// @Router /api/auth/staff/login [post]
func (c *AuthController) StaffLogin(ctx *gin.Context) {
	var req service.StaffLoginReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	result, err := c.AuthService.LoginStaff(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// CreateStaff godoc
// @Summary 创建评委或管理员账号
// @Tags 管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateStaffReq true "账号信息"
// @Success 201 {object} util.Response{data=model.User}
// @Router /api/admin/staff [post]
func (c *AuthController) CreateStaff(ctx *gin.Context) {
	var req service.CreateStaffReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	user, err := c.AuthService.CreateStaff(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}
