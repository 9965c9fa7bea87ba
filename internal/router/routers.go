package router

import (
	"github.com/gin-gonic/gin"
	"github.com/looking-sharp/User-Authentication-Microservice/config"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/handler"
	"github.com/looking-sharp/User-Authentication-Microservice/internal/middleware"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/metrics"
)

type Router struct {
	authHandler   *handler.AuthHandler
	healthHandler *handler.HealthHandler
	adminHandler  *handler.AdminHandler

	validMw *middleware.ValidationMiddleware
	metrics *metrics.Metrics
	Config  *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	health *handler.HealthHandler,
	admin *handler.AdminHandler,

	validMw *middleware.ValidationMiddleware,
	m *metrics.Metrics,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:   auth,
		healthHandler: health,
		adminHandler:  admin,

		validMw: validMw,
		metrics: m,
		Config:  config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware("http", r.Config.App.Timeout))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.metrics))

	router.GET("/health", r.healthHandler.Liveness)
	router.GET("/health/detailed", r.healthHandler.HealthCheck)
	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	r.authRoutes(router)
	r.adminRoutes(router)

	return router
}
