// Package api wires the mock extension API: routing, middleware and handlers
// over the object store.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yaroslav/haloclient/internal/api/handlers"
	"github.com/yaroslav/haloclient/internal/api/middleware"
	"github.com/yaroslav/haloclient/internal/metrics"
	"github.com/yaroslav/haloclient/internal/store"
)

// RouterConfig holds configuration for setting up the HTTP router.
type RouterConfig struct {
	// Store holds every object served by the API.
	Store *store.Store

	// Logger is used for request logging. Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics receives HTTP metrics and is served on /metrics.
	// Optional: metrics are disabled when nil.
	Metrics *metrics.Metrics

	// Auth guards the API routes. Optional: all requests are accepted when
	// nil or when no credentials are configured.
	Auth *middleware.AuthConfig

	// AllowOrigins enables CORS for the listed origins.
	AllowOrigins []string

	// RateLimit is the per-IP request rate in requests per second.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the per-IP burst size.
	RateBurst int
}

// SetupRouter creates the Gin engine serving the extension API.
//
// Routes:
//   - /metrics and /health/{live,ready} (no authentication)
//   - /api/{version}/{plural}[/{name}] for the core group
//   - /apis/{group}/{version}/{plural}[/{name}] for every other group
func SetupRouter(config *RouterConfig) *gin.Engine {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Names may contain escaped slashes.
	router.UseRawPath = true
	router.UnescapePathValues = true

	router.Use(gin.Recovery())
	if config.Metrics != nil {
		router.Use(middleware.Metrics(config.Metrics))
	}
	router.Use(middleware.RequestLogger(logger))
	if len(config.AllowOrigins) > 0 {
		router.Use(middleware.CORS(config.AllowOrigins))
	}
	router.Use(middleware.RateLimitByIP(config.RateLimit, config.RateBurst, config.Metrics))

	if config.Metrics != nil {
		router.GET("/metrics", gin.WrapH(config.Metrics.Handler()))
	}

	healthHandler := handlers.NewHealthHandler(config.Store)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Liveness)
		health.GET("/ready", healthHandler.Readiness)
	}

	auth := config.Auth
	if auth == nil {
		auth = &middleware.AuthConfig{}
	}
	if auth.Metrics == nil {
		auth.Metrics = config.Metrics
	}

	resources := handlers.NewResourceHandler(config.Store)

	core := router.Group("/api/:version/:plural")
	core.Use(middleware.RequireAuth(auth))
	registerResourceRoutes(core, resources)

	grouped := router.Group("/apis/:group/:version/:plural")
	grouped.Use(middleware.RequireAuth(auth))
	registerResourceRoutes(grouped, resources)

	router.NoRoute(func(c *gin.Context) {
		middleware.AbortWithProblem(c, http.StatusNotFound, "No route for "+c.Request.URL.Path)
	})

	return router
}

func registerResourceRoutes(rg *gin.RouterGroup, h *handlers.ResourceHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:name", h.Get)
	rg.PUT("/:name", h.Update)
	rg.PATCH("/:name", h.Patch)
	rg.DELETE("/:name", h.Delete)
}
