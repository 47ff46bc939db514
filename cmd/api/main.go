package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eie-registry/internal/app"
	"eie-registry/internal/config"
	"eie-registry/internal/events"
	"eie-registry/internal/handler"
	"eie-registry/internal/queue"
	"eie-registry/internal/repository"
	"eie-registry/internal/seed"
	"eie-registry/internal/service"
	"eie-registry/internal/worker"
	"eie-registry/internal/ws"
	"eie-registry/pkg/database"
	"eie-registry/pkg/jwt"
	applog "eie-registry/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		boot := applog.New("info", true)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := applog.New(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if err := seed.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// 3. Seed default privileges, roles, the Invitalia institution and admin user
	if err := seed.Run(db, seed.Options{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword}, log); err != nil {
		log.Warn().Err(err).Msg("seed failed")
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	store, err := app.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	processor := app.NewUploadProcessor(db, store, app.NewLookup(cfg, log), wsHub, log)

	var enqueuer queue.Enqueuer
	if cfg.RedisAddr != "" {
		asynqEnqueuer := queue.NewAsynqEnqueuer(app.RedisOpt(cfg))
		defer asynqEnqueuer.Close()
		enqueuer = asynqEnqueuer

		// the worker process writes upload progress to the outbox
		relay := events.NewHubRelay(repository.NewOutboxRepo(db), wsHub, cfg.OutboxInterval, cfg.OutboxBatch, log)
		go func() {
			if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("upload event relay stopped")
			}
		}()
	} else {
		log.Warn().Msg("REDIS_ADDR not set, product files are processed inside the API")
		enqueuer = &queue.InlineEnqueuer{Run: worker.NewProcessor(processor, log).Run, Logger: log}
	}

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	institutionRepo := repository.NewInstitutionRepo(db)
	productRepo := repository.NewProductRepo(db)
	historyRepo := repository.NewStatusHistoryRepo(db)
	uploadRepo := repository.NewUploadRepo(db)

	authService := service.NewAuthService(userRepo, jwt.NewSigner(cfg.Secret(), cfg.JWTTTL), log)
	consentService := service.NewConsentService(repository.NewConsentRepo(db), cfg.TOSVersion)
	productService := service.NewProductService(productRepo, historyRepo, repository.NewOutboxRepo(db), db, wsHub, log)
	fileService := service.NewProductFileService(uploadRepo, productRepo, store, enqueuer,
		service.FileLimits{MaxBytes: cfg.UploadMaxBytes, MaxRows: cfg.UploadMaxRows}, wsHub, log)

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.LoginURL),
		User:        handler.NewUserHandler(service.NewUserService(userRepo, roleRepo, institutionRepo), log),
		Permission:  handler.NewPermissionHandler(service.NewPermissionService(roleRepo, privilegeRepo)),
		Consent:     handler.NewConsentHandler(consentService),
		Institution: handler.NewInstitutionHandler(service.NewInstitutionService(institutionRepo), log),
		Product:     handler.NewProductHandler(productService, log),
		ProductFile: handler.NewProductFileHandler(fileService, cfg.UploadMaxBytes, log),
		Stats:       handler.NewStatsHandler(service.NewStatsService(productRepo, historyRepo)),
		Health:      handler.NewHealthHandler(db),
	}

	// 6. Setup Fiber
	fiberApp := fiber.New(fiber.Config{
		AppName:      "EIE Registry v1.0",
		BodyLimit:    int(cfg.UploadMaxBytes) + 1<<20, // multipart overhead
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	})

	// Middleware
	fiberApp.Use(requestid.New())
	fiberApp.Use(logger.New()) // Logging request
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// 7. Routes
	handler.SetupRoutes(fiberApp, handlers, handler.RouteConfig{
		BasePath:       cfg.BasePath(),
		LoginURL:       cfg.LoginURL,
		AuthService:    authService,
		ConsentService: consentService,
		Hub:            wsHub,
		Logger:         log,
	})

	// 8. Graceful Shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Msg("api listening")
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Panic().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stop()
	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
