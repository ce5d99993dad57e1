package user

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/middleware"
	"trustfund-backend/pkg/taskname"
	"trustfund-backend/services/campaign"
)

var Module = fx.Module("user.service",
	fx.Provide(
		NewService,
		NewHandler,
		NewTaskHandler,
		func(svc *Service) campaign.RoleResolver { return svc },
	),
	fx.Invoke(registerRoutes, registerTaskHandlers),
)

type taskParams struct {
	fx.In

	Mux     *asynq.ServeMux `optional:"true"`
	Handler *TaskHandler
}

func registerTaskHandlers(p taskParams) {
	if p.Mux == nil {
		return
	}
	p.Mux.HandleFunc(taskname.EmailWelcome, p.Handler.HandleWelcomeEmail)
	p.Mux.HandleFunc(taskname.EmailPasswordReset, p.Handler.HandlePasswordResetEmail)
}

func registerRoutes(engine *gin.Engine, cfg *config.Config, h *Handler) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/forgotpassword", h.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", h.ResetPassword)
	}

	authed := engine.Group("/api/auth")
	authed.Use(middleware.Auth(cfg))
	{
		authed.GET("/me", h.Me)
		authed.PUT("/profile", h.UpdateProfile)
	}
}
