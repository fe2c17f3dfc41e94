package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"irps-content-analyzer/pkg/logger"
)

type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Metrics        http.Handler
	Logger         *logger.Logger
}

// NewRouter wires the routes. Only the analyze endpoints are rate limited.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	l := opts.Logger
	if l == nil {
		l = logger.NewNop()
	}
	r := gin.New()
	r.Use(recoverOutcome(l), logRequest(l))

	r.GET("/health", h.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	limited := r.Group("/analyze")
	if opts.RateLimitRPS > 0 {
		limited.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)))
	}
	limited.POST("", h.Analyze)
	limited.POST("/batch", h.AnalyzeBatch)
	return r
}

// recoverOutcome turns a panic into the standard error body.
func recoverOutcome(l *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.Error("panic recovered",
			logger.String("path", c.Request.URL.Path),
			logger.String("panic", fmt.Sprint(recovered)),
		)
		errorOutcome(c, http.StatusInternalServerError, "internal server error", nil)
	})
}

func logRequest(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}

func rateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			errorOutcome(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
