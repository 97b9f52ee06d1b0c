package middleware

import (
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/util"
	"mandabem_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigMiddleware 把当前配置放进请求上下文，供鉴权读取 JWT 密钥
func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseToken(token, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		util.SetCurrentUser(c, claims)
		c.Next()
	}
}

// RoleMiddleware 管理员拥有所有角色的权限
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.CurrentUser(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if user.Role == model.Admin || hasRole(user.Role, roles) {
			c.Next()
			return
		}

		logger.Log.Debug("role rejected",
			zap.String("path", c.FullPath()),
			zap.String("user_id", user.UserID),
			zap.String("role", string(user.Role)),
		)
		util.Forbidden(c)
		c.Abort()
	}
}

func hasRole(role model.UserRole, allowed []model.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
