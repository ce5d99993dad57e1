package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trustfund-backend/internal/server"
	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/db"
	"trustfund-backend/pkg/health"
	"trustfund-backend/pkg/logger"
	"trustfund-backend/pkg/mailer"
	"trustfund-backend/pkg/minio"
	"trustfund-backend/pkg/redis"
	"trustfund-backend/pkg/sequence"
	"trustfund-backend/pkg/task"
	"trustfund-backend/services/analytics"
	"trustfund-backend/services/campaign"
	"trustfund-backend/services/donation"
	"trustfund-backend/services/upload"
	"trustfund-backend/services/user"
)

func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		task.Client,
		task.Server,
		sequence.Module,
		minio.Client,
		mailer.Module,
		health.Module,
		fx.Provide(provideSnowflakeNode),
		fx.Invoke(autoMigrate),
		server.Module,
		user.Module,
		campaign.Module,
		donation.Module,
		analytics.Module,
		upload.Module,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&user.User{},
		&campaign.Campaign{},
		&donation.Donation{},
		&donation.Transaction{},
		&donation.Receipt{},
	)
}
