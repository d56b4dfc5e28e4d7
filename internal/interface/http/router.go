package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/iknowall-bot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// webhook is nil unless Telegram runs in webhook mode.
func NewRouter(cfg *config.Config, handler *Handler, webhook *WebhookHandler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		errorHandlingMiddleware(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)

	router.GET("/healthz", handler.Health)

	if webhook != nil {
		router.POST("/telegram/webhook/:secret", webhook.Receive)
	}

	api := router.Group("/api/v1/qa")
	api.Use(rateLimitMiddleware(cfg.HTTP.RateLimit, logger))
	{
		api.POST("/ask", handler.Ask)
		api.GET("/trending", handler.Trending)
		api.GET("/status", handler.Status)

		admin := api.Group("", adminMiddleware(cfg.HTTP.AdminToken))
		admin.GET("/misses", handler.Misses)
		admin.POST("/refresh", handler.Refresh)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
