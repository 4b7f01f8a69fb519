package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nmrhose/nmrhose/internal/infrastructure/monitoring/logging"
	"github.com/nmrhose/nmrhose/internal/interfaces/http/handlers"
	"github.com/nmrhose/nmrhose/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	HealthHandler   *handlers.HealthHandler
	PredictHandler  *handlers.PredictHandler
	EstimateHandler *handlers.EstimateHandler

	CORSConfig   middleware.CORSConfig
	LogConfig    middleware.LoggingConfig
	RateLimiter  middleware.RateLimiter
	RateLimitCfg middleware.RateLimitConfig

	Logger logging.Logger
}

// wrapMiddleware adapts a stdlib func(http.Handler) http.Handler into a
// gin.HandlerFunc, running it around the remaining handler chain. A
// middleware that answers without calling next aborts the chain.
func wrapMiddleware(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}

// requestID assigns a request-scoped UUID when the caller did not supply
// one via X-Request-ID, mirroring the teacher's request-tracing convention.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// wrapHandlerFunc adapts a stdlib http.HandlerFunc so it can be registered
// directly on a gin route, reusing the already-built handler logic as-is.
func wrapHandlerFunc(h http.HandlerFunc) gin.HandlerFunc {
	return gin.WrapF(h)
}

// NewRouter constructs the complete HTTP route tree: the already-adapted
// stdlib middleware chain (CORS, access logging, rate limiting) wrapped
// around a gin.Engine, with health, predict, and estimate endpoints mounted
// via gin.WrapF over their existing stdlib handler methods.
func NewRouter(cfg RouterConfig) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(wrapMiddleware(middleware.CORS(cfg.CORSConfig)))
	r.Use(wrapMiddleware(middleware.RequestLogging(cfg.Logger, cfg.LogConfig)))
	if cfg.RateLimiter != nil {
		r.Use(wrapMiddleware(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitCfg)))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", wrapHandlerFunc(cfg.HealthHandler.Liveness))
		r.GET("/readyz", wrapHandlerFunc(cfg.HealthHandler.Readiness))
		r.GET("/healthz/detail", wrapHandlerFunc(cfg.HealthHandler.Detailed))
	}

	v1 := r.Group("/v1")
	if cfg.PredictHandler != nil {
		v1.POST("/predict", wrapHandlerFunc(cfg.PredictHandler.Predict))
	}
	if cfg.EstimateHandler != nil {
		v1.POST("/estimate", wrapHandlerFunc(cfg.EstimateHandler.Estimate))
	}

	return r
}
