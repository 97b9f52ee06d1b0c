package util

import (
	"errors"
	"mandabem_backend/pkg/logger"
	"mandabem_backend/pkg/tracing"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, "unauthorized")
}

func Forbidden(c *gin.Context) {
	Fail(c, http.StatusForbidden, "forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, "not_found")
}

func InternalServerError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "internal_error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.String("trace_id", tracing.TraceID(c.Request.Context())),
		zap.Error(err),
	)
	InternalServerError(c)
}

// StatusFor 错误类别到 HTTP 状态码的映射
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		if errors.Is(err, ErrInvalidCredentials) {
			return http.StatusUnauthorized
		}
		if errors.Is(err, ErrPermissionDenied) {
			return http.StatusForbidden
		}
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError 业务错误只返回 code，基础设施错误记录日志后返回 500
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		LogInternalError(c, err)
		return
	}
	Fail(c, status, CodeOf(err))
}
