package ratelimiter

import (
	"sync"
	"time"

	"github.com/VannaSem/SevaSign/internal/config"
	"go.uber.org/zap"
)

// FixedWindowRateLimiter counts requests per client ip inside a fixed time
// frame. Counters reset when their window elapses.
type FixedWindowRateLimiter struct {
	sync.RWMutex
	clients map[string]int
	cfg     config.RateLimiterConfig
	logger  *zap.SugaredLogger
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		cfg:     cfg,
		logger:  logger,
	}
}

// Allow reports whether the client may proceed. When the limit is hit it
// returns the time frame the caller should wait before retrying.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.Lock()
	count, exists := rl.clients[ip]
	if count >= rl.cfg.RequestsPerTimeFrame {
		rl.Unlock()
		rl.logger.Debugf("Rate limit exceeded for ip: %s", ip)
		return false, rl.cfg.TimeFrame
	}

	if !exists {
		go rl.resetCount(ip)
	}

	rl.clients[ip]++
	rl.Unlock()
	return true, 0
}

func (rl *FixedWindowRateLimiter) resetCount(ip string) {
	time.Sleep(rl.cfg.TimeFrame)
	rl.Lock()
	delete(rl.clients, ip)
	rl.Unlock()
}
