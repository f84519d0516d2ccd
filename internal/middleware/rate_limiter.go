package middleware

import (
	"fmt"

	"github.com/VannaSem/SevaSign/internal/util"
	"github.com/gin-gonic/gin"
)

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	if !m.app.Config.RateLimiter.Enabled {
		ctx.Next()
		return
	}

	allow, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allow {
		ctx.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		util.ResponseFailed(ctx, 429, "Rate limit exceeded, retry later", nil, nil)
		ctx.Abort()
		return
	}

	ctx.Next()
}
