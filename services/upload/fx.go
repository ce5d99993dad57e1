package upload

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/middleware"
)

var Module = fx.Module("upload.service",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(engine *gin.Engine, cfg *config.Config, h *Handler) {
	uploads := engine.Group("/api/upload")
	uploads.Use(middleware.Auth(cfg))
	{
		uploads.POST("/profile-image", h.ProfileImage)
		uploads.POST("/campaign/:id", h.CampaignImage)
	}
}
