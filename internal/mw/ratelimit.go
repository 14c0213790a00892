package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	r       rate.Limit
	b       int
}

func newClientLimiter(r rate.Limit, b int) *clientLimiter {
	return &clientLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       r,
		b:       b,
	}
}

func (l *clientLimiter) limiterFor(addr string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.buckets[addr]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.r, l.b)
	l.buckets[addr] = lim
	return lim
}

// RateLimiter limits requests per client address. When ipHeader is set the
// client address is read from that header (for deployments behind a trusted
// proxy); otherwise gin's ClientIP is used.
func RateLimiter(r rate.Limit, burst int, ipHeader string) gin.HandlerFunc {
	limiter := newClientLimiter(r, burst)
	return func(c *gin.Context) {
		addr := ""
		if ipHeader != "" {
			addr = c.GetHeader(ipHeader)
		}
		if addr == "" {
			addr = c.ClientIP()
		}

		if !limiter.limiterFor(addr).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
