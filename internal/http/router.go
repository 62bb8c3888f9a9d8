package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notify_hub/internal/auth"
	"notify_hub/internal/config"
	"notify_hub/internal/http/controller"
	"notify_hub/internal/http/middleware"
	"notify_hub/internal/metrics"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, validator auth.TokenValidator, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(otelgin.Middleware(cfg.OTELServiceName), middleware.ZapLogger(logger), middleware.ZapRecovery(logger))

	router.GET("/health", func(c *gin.Context) {
		c.Status(200)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	router.GET("/ws", handler.WebSocket)

	api := router.Group("/notifications", middleware.BearerAuth(validator, logger))
	api.GET("", handler.ListUnread)
	api.GET("/count", handler.CountUnread)
	api.POST("", handler.CreateNotification)
	api.POST("/publish", handler.PublishNotification)
	api.POST("/:id/respond", handler.Respond)

	return router
}
