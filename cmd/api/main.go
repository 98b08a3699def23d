package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/noc-intake/internal/api/http"
	"github.com/spec-kit/noc-intake/internal/api/http/handlers"
	"github.com/spec-kit/noc-intake/internal/config"
	"github.com/spec-kit/noc-intake/internal/events"
	"github.com/spec-kit/noc-intake/internal/ingest"
	"github.com/spec-kit/noc-intake/internal/observability"
	"github.com/spec-kit/noc-intake/internal/persistence"
	"github.com/spec-kit/noc-intake/internal/repository"
	"github.com/spec-kit/noc-intake/internal/service"
	"github.com/spec-kit/noc-intake/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketRepo := repository.NewTicketRepository()
	emailRepo := repository.NewEmailRepository()
	referenceRepo := repository.NewReferenceRepository()
	archiveRepo := repository.NewArchiveRepository(pg.PoolHandle())

	archiveWorker := worker.NewArchiveWorker(archiveRepo, logger)
	archiveWorker.Register(dispatcher)

	notificationService := service.NewNotificationService(emailRepo, dispatcher, logger, cfg.Mailbox)

	var transition service.TransitionPolicy
	if cfg.Intake.StrictTransitions {
		transition = service.StrictTransitionPolicy
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    ticketRepo,
		ReferenceRepo: referenceRepo,
		Notifications: notificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Transition:    transition,
	})
	signOffService := service.NewSignOffService(ticketService, notificationService, logger)
	advisoryService := service.NewAdvisoryService(cfg.Advisory, ticketRepo, emailRepo, referenceRepo, redis, logger)
	loader := ingest.NewLoader(referenceRepo, dispatcher, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	intakeHandler := handlers.NewIntakeHandler(ticketService, metrics)
	ticketsHandler := handlers.NewTicketsHandler(ticketService)
	inboxHandler := handlers.NewInboxHandler(emailRepo, signOffService, cfg.Mailbox)
	adminHandler := handlers.NewAdminHandler(handlers.AdminDependencies{
		Loader:        loader,
		Advisory:      advisoryService,
		TicketRepo:    ticketRepo,
		EmailRepo:     emailRepo,
		ReferenceRepo: referenceRepo,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Intake:  intakeHandler,
		Tickets: ticketsHandler,
		Inbox:   inboxHandler,
		Admin:   adminHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
