package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mediastash/mediastash/config"
	"github.com/mediastash/mediastash/utils"
)

type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*clientLimiter{}
	limitersMu sync.Mutex
)

// RateLimitMiddleware applies a per-IP token bucket limiter. Uploads are
// expensive (disk + encoder), so the bucket is sized from the configured
// per-minute budget with a half-budget burst.
func RateLimitMiddleware() gin.HandlerFunc {
	cfg := config.Get()
	perMinute := cfg.RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		if !allow(ctx.ClientIP(), limit, burst) {
			utils.Error(ctx, 429, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func allow(key string, limit rate.Limit, burst int) bool {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	now := time.Now()
	for k, l := range limiters {
		if now.After(l.expires) {
			delete(limiters, k)
		}
	}

	l, ok := limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
		limiters[key] = l
	}
	l.expires = now.Add(5 * time.Minute)
	return l.limiter.Allow()
}
