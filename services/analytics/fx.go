package analytics

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/middleware"
)

var Module = fx.Module("analytics.service",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(engine *gin.Engine, cfg *config.Config, h *Handler) {
	analytics := engine.Group("/api/analytics")
	analytics.Use(middleware.Auth(cfg))
	{
		analytics.GET("/dashboard", h.Dashboard)
	}
}
