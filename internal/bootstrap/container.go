package bootstrap

import (
	"pdfchat-be/internal/config"
	"pdfchat-be/internal/controller"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/internal/service"
	"pdfchat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	SessionController controller.ISessionController

	// Services exposed for main.go and the middleware chain
	AuthService    service.IAuthService
	SessionService service.ISessionService
	AuditService   service.IAuditService
	Sweeper        *service.Sweeper

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	sweepLogger := logger.NewIsolatedLogger(cfg.App.SweepLogFilePath)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisher := events.NewPublisher(pubSub)

	// 3. Services
	credentialStore := service.NewCredentialStore(uowFactory, sysLogger)
	authService := service.NewAuthService(uowFactory, credentialStore, publisher, sysLogger, service.AuthOptions{
		JWTSecret:       cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL(),
		RefreshTokenTTL: cfg.RefreshTokenTTL(),
	})
	isolationService := service.NewIsolationService(uowFactory, sysLogger)
	sessionService := service.NewSessionService(uowFactory, isolationService, publisher, sysLogger)
	auditService := service.NewAuditService(pubSub, sysLogger)

	sweeper := service.NewSweeper(sessionService, authService, sweepLogger, service.SweeperOptions{
		InactivityWindow: cfg.InactivityWindow(),
		RetentionWindow:  cfg.RetentionWindow(),
		Interval:         cfg.SweepInterval(),
	})

	// 4. Controllers
	authController := controller.NewAuthController(authService, credentialStore)
	sessionController := controller.NewSessionController(sessionService, isolationService, authService)

	return &Container{
		AuthController:    authController,
		SessionController: sessionController,
		AuthService:       authService,
		SessionService:    sessionService,
		AuditService:      auditService,
		Sweeper:           sweeper,
		Logger:            sysLogger,
	}
}
