package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/starcheck/quality-panel/internal/config"
	"github.com/starcheck/quality-panel/internal/http/handlers"
	"github.com/starcheck/quality-panel/internal/http/middleware"
	"github.com/starcheck/quality-panel/internal/service"

	_ "github.com/starcheck/quality-panel/docs"
)

// Router wires the API. store may be nil when no database is configured.
func Router(cfg config.Config, store handlers.IndexStore, dashboard *service.DashboardService, reloader *service.Reloader, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Dashboard: dashboard,
		Reloader:  reloader,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	{
		api.GET("/sources", h.Sources)
		api.GET("/periods", h.Periods)
		api.POST("/dashboard", h.BuildDashboard)
		api.POST("/records", h.Records)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/reload", h.Reload)
		admin.GET("/indexes/:id", h.IndexGet)
		admin.PUT("/indexes/:id", h.IndexReplace)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
