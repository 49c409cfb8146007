package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shop-api/internal/core/auth"
	"shop-api/internal/core/config"
	"shop-api/internal/core/server"
	"shop-api/internal/service"
	"shop-api/internal/transport/http/handler"
	mdw "shop-api/internal/transport/http/middleware"
	resp "shop-api/internal/transport/http/response"
)

type Options struct {
	Logger   *zap.Logger
	JWT      *auth.JWTer
	Services *service.Services
	Limits   config.Limits
	Server   server.Options

	// 非空时挂 otelgin
	TraceService string
	// /health 探活，nil 时只返回 ok
	Ping func(ctx context.Context) error
}

// Modules 业务模块清单
func Modules(s *service.Services) []any {
	return []any{
		handler.NewUserHandler(s.Users),
		handler.NewCatalogHandler(s.Catalog),
		handler.NewCartHandler(s.Cart),
		handler.NewOrderHandler(s.Orders),
		handler.NewChatHandler(s.Chat),
		handler.NewFeedbackHandler(s.Feedback),
	}
}

func withDefaults(lim config.Limits) config.Limits {
	if lim.RPS <= 0 {
		lim.RPS = 200
	}
	if lim.Burst <= 0 {
		lim.Burst = 400
	}
	if lim.IPRPS <= 0 {
		lim.IPRPS = 50
	}
	if lim.IPBurst <= 0 {
		lim.IPBurst = 100
	}
	if lim.IPIdleMin <= 0 {
		lim.IPIdleMin = 10
	}
	if lim.Concurrency <= 0 {
		lim.Concurrency = 300
	}
	if lim.MaxBodyMB <= 0 {
		lim.MaxBodyMB = 16
	}
	if lim.TimeoutSec <= 0 {
		lim.TimeoutSec = 10
	}
	return lim
}

// newEngine 两个进程共用的中间件链与 /health、/metrics
func newEngine(o Options) *gin.Engine {
	l := o.Logger
	if l == nil {
		l = zap.NewNop()
	}
	lim := withDefaults(o.Limits)

	r := server.NewRouter(o.Server)
	if o.TraceService != "" {
		r.Use(mdw.Tracing(o.TraceService)...)
	}
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.Recovery(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.IPRPS), lim.IPBurst, time.Duration(lim.IPIdleMin)*time.Minute),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if o.Ping != nil {
			if err := o.Ping(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				resp.Abort(c, resp.CodeUnavailable, "unavailable")
				return
			}
		}
		resp.JSON(c, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}
