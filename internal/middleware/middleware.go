package middleware

import (
	appcontext "github.com/VannaSem/SevaSign/internal/app_context"
	ratelimiter "github.com/VannaSem/SevaSign/internal/rate_limiter"
)

type Middleware struct {
	rateLimiter *ratelimiter.FixedWindowRateLimiter
	app         *appcontext.Application
}

func NewMiddleware(app *appcontext.Application,
	rateLimiter *ratelimiter.FixedWindowRateLimiter,
) *Middleware {
	return &Middleware{app: app, rateLimiter: rateLimiter}
}
