package router

import (
	"github.com/motormarket/user-service/internal/application"
	"github.com/motormarket/user-service/internal/container"
	pginfra "github.com/motormarket/user-service/internal/infrastructure/postgres"
	handlers "github.com/motormarket/user-service/internal/interface/http"
	"github.com/motormarket/user-service/internal/router/modules"
)

// InitModules builds the services from container singletons and registers
// all feature modules. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	carRepo := pginfra.NewCarRepository(container.GetPGPool())

	userSvc := application.NewUserService(userRepo, container.GetTokens())
	userSvc.Redis = container.GetRedis()
	userSvc.Logger = logger
	userSvc.ES = container.GetES()
	userSvc.ESUsersIndex = cfg.ESUsersIndex
	userSvc.Pub = container.GetRabbitPub()
	userSvc.GCS = container.GetGCS()
	userSvc.GCSBucket = cfg.GCSBucket
	userSvc.AppName = cfg.AppName
	userSvc.MailEnabled = cfg.MailSendEnabled
	userSvc.CacheTTL = cfg.ProfileCacheTTL

	favSvc := application.NewFavoritesService(userRepo, carRepo, logger)
	favSvc.Redis = container.GetRedis()

	userHandler := handlers.NewUserHandler(userSvc, logger)
	favHandler := handlers.NewFavoritesHandler(favSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetTokens()))
	r.Add(modules.NewFavoritesModule(favHandler, container.GetTokens()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
