package middleware

import (
	"mandabem_backend/internal/config"
	"mandabem_backend/internal/model"
	"mandabem_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func newRouter(roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}

	r := gin.New()
	r.Use(ConfigMiddleware(cfg))
	r.GET("/protected", AuthMiddleware(), RoleMiddleware(roles...), func(c *gin.Context) {
		util.Success(c, util.CurrentUser(c).UserID)
	})
	return r
}

func tokenFor(t *testing.T, role model.UserRole) string {
	t.Helper()
	user := &model.User{Role: role}
	user.ID = "u-" + string(role)
	token, err := util.IssueToken(user, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func call(r *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(model.Participant)

	assert.Equal(t, http.StatusUnauthorized, call(r, ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, "not-a-token"))
	assert.Equal(t, http.StatusOK, call(r, tokenFor(t, model.Participant)))
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(model.JudgeRole)

	assert.Equal(t, http.StatusOK, call(r, tokenFor(t, model.JudgeRole)))
	assert.Equal(t, http.StatusForbidden, call(r, tokenFor(t, model.Participant)))
	// 管理员拥有全部角色权限
	assert.Equal(t, http.StatusOK, call(r, tokenFor(t, model.Admin)))
}

func TestBearerTokenParsing(t *testing.T) {
	r := newRouter(model.Participant)
	token := tokenFor(t, model.Participant)

	for _, header := range []string{"bearer " + token, "Bearer   " + token} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, header)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
