package ratelimit

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

const maxTrackedClients = 10000

// PerIP hands out one token bucket per client IP.
type PerIP struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPerIP builds a limiter allowing rps requests per second with the given burst.
// A non-positive rps disables limiting.
func NewPerIP(rps float64, burst int) *PerIP {
	if burst <= 0 {
		burst = 1
	}
	return &PerIP{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the client identified by key may proceed.
func (p *PerIP) Allow(key string) bool {
	if p == nil || p.limit <= 0 {
		return true
	}
	if key == "" {
		key = "unknown"
	}
	return p.get(key).Allow()
}

func (p *PerIP) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[key]; ok {
		return l
	}
	// Coarse bound on memory; a reset only forgives clients.
	if len(p.limiters) >= maxTrackedClients {
		p.limiters = make(map[string]*rate.Limiter)
	}
	l := rate.NewLimiter(p.limit, p.burst)
	p.limiters[key] = l
	return l
}

// Middleware rejects requests over the budget with a 429 envelope.
func (p *PerIP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.Allow(c.ClientIP()) {
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
