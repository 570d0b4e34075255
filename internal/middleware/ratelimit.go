package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"tourbook/internal/apperrors"
	"tourbook/internal/logger"
	"tourbook/internal/utils/helpers"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const visitorIdle = time.Hour

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter - token bucket на каждый IP: perHour запросов в час, с тем же запасом burst.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(perHour int) *RateLimiter {
	if perHour <= 0 {
		perHour = 100
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perHour) / time.Hour.Seconds()),
		burst:    perHour,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > visitorIdle {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > visitorIdle {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		ip := clientIP(r)
		if !rl.allow(ip) {
			logger.WithCtx(r.Context()).Warn("Превышен лимит запросов", zap.String("ip", ip))
			helpers.WriteError(w, r, apperrors.TooManyRequests("Too many requests from this IP, please try again in an hour!"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
