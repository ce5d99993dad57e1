package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/health"
	"trustfund-backend/pkg/middleware"
)

var Module = fx.Module("http.server",
	fx.Provide(
		ProvideEngine,
		ProvideHTTPServer,
	),
	fx.Invoke(
		registerHealthRoutes,
		Run,
	),
)

// ProvideEngine constructs the gin engine all services register their routes on.
func ProvideEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Error())

	return engine
}

func ProvideHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func registerHealthRoutes(engine *gin.Engine, h health.HealthService) {
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)
}

// Run wires the HTTP server lifecycle to the fx application.
func Run(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("Starting HTTP server...", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...", zap.String("addr", cfg.Server.Addr))
			return srv.Shutdown(ctx)
		},
	})
}
