package util

import (
	"errors"
	"mandabem_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "mandabem"

// ctxUserKey 鉴权中间件写入、控制器读取
const ctxUserKey = "user"

var errUnknownRole = errors.New("token carries unknown role")

// Claims 参赛者与工作人员共用，角色决定可访问的路由组
type Claims struct {
	UserID string         `json:"user_id"`
	Name   string         `json:"name"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken 为用户签发 HS256 令牌，ttl 取自 jwt.expire_hours
func IssueToken(user *model.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !claims.Role.Valid() {
		return nil, errUnknownRole
	}
	return claims, nil
}

func SetCurrentUser(c *gin.Context, claims *Claims) {
	c.Set(ctxUserKey, claims)
}

// CurrentUser 未经过鉴权中间件时返回 nil
func CurrentUser(c *gin.Context) *Claims {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
