package router

import (
	userapp "github.com/glowcast/glowcast/internal/application"
	"github.com/glowcast/glowcast/internal/container"
	pginfra "github.com/glowcast/glowcast/internal/infrastructure/postgres"
	handlers "github.com/glowcast/glowcast/internal/interface/http"
	"github.com/glowcast/glowcast/internal/router/modules"
)

// InitModules builds the service graph from container singletons and
// registers every feature module. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := pginfra.NewUserRepository(container.GetPGPool())

	userSvc := userapp.NewService(repo, container.GetJWT(), logger)
	userSvc.GCS = container.GetGCS()
	userSvc.GCSBucket = cfg.GCSBucket
	userSvc.Pub = container.GetRabbitPub()
	userSvc.ES = container.GetES()
	userSvc.ESStreamersIndex = cfg.ESStreamersIndex
	userSvc.ResetPasswordURL = cfg.ResetPasswordURL
	userSvc.ResetTokenTTL = cfg.ResetTokenTTL
	userSvc.MailSendEnabled = cfg.MailSendEnabled

	keySvc := userapp.NewStreamKeyService(repo, logger)
	pointsSvc := userapp.NewPointsService(repo, logger)

	userHandler := handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(userSvc, logger)
	streamHandler := handlers.NewStreamHandler(userSvc, keySvc, logger)
	pointsHandler := handlers.NewPointsHandler(pointsSvc, userSvc, logger)

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewStreamModule(streamHandler, container.GetJWT()))
	r.Add(modules.NewPointsModule(pointsHandler, container.GetJWT()))
	r.Add(modules.NewDebugModule())
}
