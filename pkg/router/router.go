package router

import (
	"net/http"
	"strings"

	"chat-relay-demo/backend/internal/api"
	"chat-relay-demo/backend/internal/metrics"
	"chat-relay-demo/backend/internal/ws"
	"chat-relay-demo/backend/pkg/config"
	"chat-relay-demo/backend/pkg/di"
	"chat-relay-demo/backend/pkg/errors"
	"chat-relay-demo/backend/pkg/logger"
	"chat-relay-demo/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container and starts the realtime
// hub.
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	// RequestID must run first: the request logger and the response header
	// both reuse the ID it stores.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(metrics.Middleware())
	engine.Use(corsMiddleware(cfg))
	engine.Use(bodySizeLimit(cfg.Security.MaxBodySize))

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	messageController := api.NewMessageController(r.Container.MessageService, r.Logger)
	apiKeyController := api.NewAPIKeyController(r.Container.APIKeyService, r.Logger)

	// Per-route request ceilings; routes without an explicit ceiling share
	// the default limiter.
	defaultLimiter := r.newLimiter(r.Config.RateLimit.Default)
	postLimiter := r.newLimiter(r.Config.RateLimit.PostMessage)
	listLimiter := r.newLimiter(r.Config.RateLimit.ListMessages)
	searchLimiter := r.newLimiter(r.Config.RateLimit.SearchMessage)

	optionalKey := middleware.OptionalAPIKey(r.Container.APIKeyService, r.Logger)

	apiGroup := r.Engine.Group("/api")
	{
		messageRoutes := apiGroup.Group("/messages")
		{
			messageRoutes.POST("", postLimiter.Middleware(), optionalKey, messageController.Create)
			messageRoutes.GET("/:sessionId", listLimiter.Middleware(), optionalKey, messageController.List)
			messageRoutes.GET("/:sessionId/search", searchLimiter.Middleware(), optionalKey, messageController.Search)
		}

		authRoutes := apiGroup.Group("/auth", defaultLimiter.Middleware())
		{
			authRoutes.POST("/keys", apiKeyController.Create)
			authRoutes.GET("/keys", apiKeyController.List)
			authRoutes.DELETE("/keys/:id", apiKeyController.Revoke)
		}
	}

	// Realtime channel
	r.Engine.GET("/ws", ws.Handler(r.Container.Hub, r.Logger))

	// Prometheus scrape endpoint
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.setupHealthRoutes()

	r.Engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errors.Envelope(
			errors.NewNotFoundError(errors.CodeNotFound, "The requested resource was not found")))
	})
	r.Engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errors.Envelope(
			errors.NewError(http.StatusMethodNotAllowed, errors.CodeMethodNotAllowed,
				"HTTP method not allowed for this endpoint")))
	})
}

func (r *Router) newLimiter(perMinute int) *middleware.RateLimiter {
	return middleware.NewRateLimiter(r.Logger, middleware.RateLimiterOptions{
		Limit: middleware.PerMinute(perMinute),
		Burst: perMinute,
	})
}

// bodySizeLimit caps request bodies. Oversized payloads surface as a bind
// error in the handler and come back as INVALID_FORMAT.
func bodySizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := strings.Join(cfg.Security.AllowedOrigins, ",")
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
