package campaign

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/middleware"
)

var Module = fx.Module("campaign.service",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(engine *gin.Engine, cfg *config.Config, h *Handler) {
	campaigns := engine.Group("/api/campaigns")
	{
		campaigns.GET("", h.List)
		campaigns.GET("/:id", h.Get)
	}

	authed := engine.Group("/api/campaigns")
	authed.Use(middleware.Auth(cfg))
	{
		authed.POST("", h.Create)
		authed.PUT("/:id", h.Update)
		authed.DELETE("/:id", h.Delete)
	}
}
