package simulator

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nexus-hvac-client/internal/config"
	"nexus-hvac-client/internal/metrics"
	"nexus-hvac-client/internal/middleware"
)

// RouterDeps carries what SetupRouter wires into the engine.
type RouterDeps struct {
	Config      *config.Config
	Handler     *Handler
	Metrics     *metrics.SimulatorMetrics
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// request ID, logging, security headers, CORS, request size limit, rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Logger, deps.Metrics))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Config.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	h := deps.Handler
	router.GET("/health", h.Health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/save", h.Register)

	customer := router.Group("/api/customer")
	{
		customer.POST("/login", h.CustomerLogin)
		customer.GET("/:customerId/device", h.CustomerDevice)
	}

	v1 := router.Group("/api/v1/devices")
	{
		v1.GET("/fleet/:companyId", h.FleetDevices)
		v1.GET("/:id/status", h.DeviceStatus)
		v1.GET("/:id/history", h.DeviceHistory)
	}

	deps.Logger.Info("Simulator routes initialized")
	return router
}
