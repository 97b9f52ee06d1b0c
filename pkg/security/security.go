package security

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS 仅允许白名单中的 Origin，白名单为空时放开且不带 Credentials
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// Secure 安全响应头；/api 下的响应含令牌与支付信息，禁止缓存
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Header("Cache-Control", "no-store")
		}
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore 每个客户端一个令牌桶
type limiterStore struct {
	mu     sync.Mutex
	every  rate.Limit
	burst  int
	expiry time.Duration
	byKey  map[string]*visitor
}

func newLimiterStore(maxRequests int, window time.Duration) *limiterStore {
	expiry := window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	return &limiterStore{
		every:  rate.Every(window / time.Duration(maxRequests)),
		burst:  maxRequests,
		expiry: expiry,
		byKey:  make(map[string]*visitor),
	}
}

func (s *limiterStore) allow(key string, now time.Time) bool {
	s.mu.Lock()
	v, ok := s.byKey[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.burst)}
		s.byKey[key] = v
	}
	v.lastSeen = now
	s.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// sweep 清理 expiry 内未出现的客户端，返回剩余数量
func (s *limiterStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.byKey {
		if now.Sub(v.lastSeen) > s.expiry {
			delete(s.byKey, key)
		}
	}
	return len(s.byKey)
}

// RateLimiter 按客户端 IP 限流，window 内最多 maxRequests 次突发
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	store := newLimiterStore(maxRequests, window)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			store.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": http.StatusTooManyRequests, "message": "rate_limited"})
			return
		}
		c.Next()
	}
}
