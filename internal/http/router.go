package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/support-insights/backend/internal/ai"
	"github.com/support-insights/backend/internal/cache"
	"github.com/support-insights/backend/internal/config"
	"github.com/support-insights/backend/internal/http/handlers"
	"github.com/support-insights/backend/internal/http/middleware"
	"github.com/support-insights/backend/internal/metrics"
	"github.com/support-insights/backend/internal/resolver"

	_ "github.com/support-insights/backend/docs"
)

func Router(cfg config.Config, res *resolver.Resolver, engine metrics.Engine, c cache.Cache, assistant ai.Assistant, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Resolver:  res,
		Engine:    engine,
		Cache:     c,
		Assistant: assistant,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/widgets", h.WidgetsCatalog)
		api.GET("/widgets/:name", h.WidgetData)
		api.GET("/tickets", h.TicketsList)
		api.GET("/chats", h.ChatsList)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/assistant/chat", h.AssistantChat)
		admin.POST("/cache/flush", h.CacheFlush)
		admin.GET("/resolve/diagnostics", h.ResolveDiagnostics)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
