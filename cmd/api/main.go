package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/compliance-tracker/internal/api/http"
	"github.com/spec-kit/compliance-tracker/internal/api/http/handlers"
	"github.com/spec-kit/compliance-tracker/internal/auth"
	"github.com/spec-kit/compliance-tracker/internal/config"
	"github.com/spec-kit/compliance-tracker/internal/domain"
	"github.com/spec-kit/compliance-tracker/internal/events"
	"github.com/spec-kit/compliance-tracker/internal/llm"
	"github.com/spec-kit/compliance-tracker/internal/observability"
	"github.com/spec-kit/compliance-tracker/internal/persistence"
	"github.com/spec-kit/compliance-tracker/internal/repository"
	"github.com/spec-kit/compliance-tracker/internal/service"
	"github.com/spec-kit/compliance-tracker/internal/ticketing"
	"github.com/spec-kit/compliance-tracker/internal/worker"
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

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongo", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := mongo.Database
	technicianRepo := repository.NewTechnicianRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	controlRepo := repository.NewControlRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	jobStore := repository.NewExtractionJobStore(redis.Client, cfg.Extraction.JobTTL())

	metrics := observability.NewMetrics()
	metrics.ServeMetrics(cfg.App.MetricsAddr, logger)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	technicianService := service.NewTechnicianService(service.TechnicianDependencies{
		TechnicianRepo: technicianRepo,
		ControlRepo:    controlRepo,
		TaskRepo:       taskRepo,
		Logger:         logger,
	})
	groupService := service.NewGroupService(groupRepo, taskRepo, logger)
	controlService := service.NewControlService(service.ControlDependencies{
		ControlRepo:    controlRepo,
		TechnicianRepo: technicianRepo,
		Dispatcher:     dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:       taskRepo,
		GroupRepo:      groupRepo,
		TechnicianRepo: technicianRepo,
		Dispatcher:     dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		ControlRepo:    controlRepo,
		TechnicianRepo: technicianRepo,
		Client:         ticketing.NewClient(cfg.Ticketing, logger),
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	extractionService := service.NewExtractionService(service.ExtractionDependencies{
		Providers: []llm.Provider{
			llm.NewGeminiClient(llm.GeminiConfig{
				APIKey:     cfg.Extraction.GeminiAPIKey,
				BaseURL:    cfg.Extraction.GeminiBaseURL,
				Model:      cfg.Extraction.GeminiModel,
				MaxRetries: cfg.Extraction.MaxRetries,
			}),
			llm.NewOpenAIClient(llm.OpenAIConfig{
				APIKey:     cfg.Extraction.OpenAIAPIKey,
				BaseURL:    cfg.Extraction.OpenAIBaseURL,
				Model:      cfg.Extraction.OpenAIModel,
				MaxRetries: cfg.Extraction.MaxRetries,
			}),
		},
		DefaultProvider: domain.ExtractionProvider(cfg.Extraction.DefaultProvider),
		JobStore:        jobStore,
		QueueSize:       cfg.Extraction.QueueSize,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
		Timeout:         cfg.Extraction.Timeout(),
		Refine:          cfg.Extraction.Refine,
	})

	stopWorkers := worker.StartExtractionWorkers(ctx, extractionService, cfg.Extraction.Workers, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	verifier := auth.NewAPIKeyVerifier(cfg.Auth.APIKey, cfg.Auth.APIKeyHash)
	authMiddleware := auth.NewMiddleware(tokens, cfg.Auth.JWTSecret != "")

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Auth:           handlers.NewAuthHandler(verifier, tokens),
		Technicians:    handlers.NewTechniciansHandler(technicianService),
		Groups:         handlers.NewGroupsHandler(groupService),
		Controls:       handlers.NewControlsHandler(controlService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Extract:        handlers.NewExtractHandler(extractionService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	stopWorkers()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
