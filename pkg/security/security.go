package security

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS 仅允许白名单中的 Origin，白名单包含 "*" 时允许任意来源（不带 Credentials）
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	allowAny := originSet["*"]

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case origin != "" && originSet[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		case allowAny:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Device-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 基础安全响应头
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按 IP 的令牌桶，同一个限流器可以挂在多个路由上共享额度
type RateLimiter struct {
	name   string
	limit  rate.Limit
	burst  int
	window time.Duration

	mu     sync.Mutex
	store  map[string]*visitor
	now    func() time.Time
	stopCh chan struct{}
}

// NewRateLimiter 每个 IP 在 window 内最多 maxRequests 次请求
func NewRateLimiter(name string, maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	return &RateLimiter{
		name:   name,
		limit:  rate.Every(window / time.Duration(maxRequests)),
		burst:  maxRequests,
		window: window,
		store:  make(map[string]*visitor),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

func (l *RateLimiter) visitorFor(key string) *visitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.store[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.store[key] = v
	}
	v.lastSeen = l.now()
	return v
}

// StartCleanup 定期清理长时间未出现的 IP，调用 Stop 结束
func (l *RateLimiter) StartCleanup() {
	expiry := l.window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-l.stopCh:
				return
			case <-ticker.C:
				l.evict(expiry)
			}
		}
	}()
}

func (l *RateLimiter) evict(expiry time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for ip, v := range l.store {
		if l.now().Sub(v.lastSeen) > expiry {
			delete(l.store, ip)
			removed++
		}
	}
	return removed
}

func (l *RateLimiter) Stop() {
	close(l.stopCh)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v := l.visitorFor(c.ClientIP())

		if !v.limiter.Allow() {
			retry := int(math.Ceil(1 / float64(l.limit)))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests (" + l.name + ")",
			})
			return
		}

		c.Next()
	}
}
