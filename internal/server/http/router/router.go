package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/HannahHaeusler/labor/internal/config"
	"github.com/HannahHaeusler/labor/internal/metrics"
	"github.com/HannahHaeusler/labor/internal/server/http/handlers"
	"github.com/HannahHaeusler/labor/internal/server/http/middleware"
)

// Params lists the router dependencies.
type Params struct {
	fx.In

	Facade   handlers.LaborFacade
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.Tracing())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(p.Facade, p.Config.BaseURI, p.Logger)
	healthHandler := handlers.NewHealthHandler(p.Facade, p.Logger)

	api := engine.Group("/api")
	api.GET("", orderHandler.List)
	api.POST("", orderHandler.Create)
	api.GET("/:id", orderHandler.Get)

	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{Registry: p.Registry})))

	return engine
}
