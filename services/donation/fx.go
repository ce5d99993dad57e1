package donation

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/middleware"
	"trustfund-backend/pkg/taskname"
	"trustfund-backend/services/campaign"
)

var Module = fx.Module("donation.service",
	fx.Provide(
		func(cfg *config.Config) Gateway { return NewMockGateway(cfg) },
		NewPipeline,
		NewHandler,
		NewTaskHandler,
		func(p *Pipeline) campaign.DonationLister { return p },
	),
	fx.Invoke(registerRoutes, registerTaskHandlers),
)

func registerRoutes(engine *gin.Engine, cfg *config.Config, h *Handler) {
	donations := engine.Group("/api/donations")
	donations.Use(middleware.Auth(cfg))
	{
		donations.POST("/campaign/:campaignId", h.Donate)
	}

	payments := engine.Group("/api/payments")
	payments.Use(middleware.Auth(cfg))
	{
		payments.POST("/mock", h.MockPayment)
	}
}

type taskParams struct {
	fx.In

	Mux     *asynq.ServeMux `optional:"true"`
	Handler *TaskHandler
}

func registerTaskHandlers(p taskParams) {
	if p.Mux == nil {
		return
	}
	p.Mux.HandleFunc(taskname.EmailReceipt, p.Handler.HandleReceiptEmail)
}
