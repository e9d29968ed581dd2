package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cyclecare/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	guard := authMiddleware(cfg.Auth)

	nearby := router.Group("/api/nearby", guard)
	{
		nearby.GET("", handler.Nearby)
		nearby.GET("/health", handler.NearbyHealth)
	}

	api := router.Group("/api/v1", guard)
	{
		api.POST("/analytics/render", handler.RenderAnalytics)
		api.GET("/analytics/profiles/:profile", handler.ProfileDashboard)
		api.PUT("/analytics/profiles/:profile/payload", handler.SaveProfilePayload)
		api.POST("/analytics/profiles/:profile/resize", handler.ResizeProfile)

		api.POST("/locator/sessions", handler.OpenLocatorSession)
		api.GET("/locator/sessions/:id", handler.GetLocatorSession)
		api.POST("/locator/sessions/:id/events", handler.DispatchLocatorEvent)
	}

	pages := router.Group("/tracker", guard)
	{
		pages.GET("/analytics/:profile", handler.AnalyticsPage)
		pages.GET("/nearby", handler.NearbyPage)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
