package controller

import (
	"mandabem_backend/internal/service"
	"mandabem_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PricingController 无状态的定价与 CPF 校验接口
type PricingController struct{}

func NewPricingController() *PricingController {
	return &PricingController{}
}

// GetPrice godoc
// @Summary 某次尝试的价格
// @Tags 工具
// @Produce json
// @Param attempt query int true "尝试次数，从 1 开始"
// @Success 200 {object} util.Response{data=service.PriceQuote}
// @Router /api/pricing [get]
func (c *PricingController) GetPrice(ctx *gin.Context) {
	attempt, err := strconv.Atoi(ctx.Query("attempt"))
	if err != nil {
		util.BadRequest(ctx, util.ErrInvalidInput.Code)
		return
	}

	quote, err := service.ComputePrice(attempt)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quote)
}

// CheckTaxID godoc
// @Summary 校验 CPF
// @Tags 工具
// @Produce json
// @Param value query string true "CPF，可带格式符"
// @Success 200 {object} util.Response
// @Router /api/tax-id [get]
func (c *PricingController) CheckTaxID(ctx *gin.Context) {
	value := ctx.Query("value")
	util.Success(ctx, gin.H{
		"valid":     util.IsValidCPF(value),
		"formatted": util.FormatCPF(value),
	})
}
