package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/backoffice-service/internal/api/http"
	"github.com/spec-kit/backoffice-service/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-service/internal/auth"
	"github.com/spec-kit/backoffice-service/internal/cache"
	"github.com/spec-kit/backoffice-service/internal/config"
	"github.com/spec-kit/backoffice-service/internal/events"
	"github.com/spec-kit/backoffice-service/internal/observability"
	"github.com/spec-kit/backoffice-service/internal/persistence"
	"github.com/spec-kit/backoffice-service/internal/repository"
	"github.com/spec-kit/backoffice-service/internal/service"
	"github.com/spec-kit/backoffice-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("failed to configure redis", zap.Error(err))
	}
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	rosterCache := cache.NewRedisRosterCache(redis, cfg.Cache, logger)

	pool := pg.PoolHandle()
	employeeRepo := repository.NewEmployeeRepository(pool)
	shiftRepo := repository.NewShiftRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		EmployeeRepo: employeeRepo,
		Logger:       logger,
	})
	employeeService := service.NewEmployeeService(*cfg, service.EmployeeDependencies{
		EmployeeRepo: employeeRepo,
		RosterCache:  rosterCache,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	scheduleService := service.NewScheduleService(service.ScheduleDependencies{
		EmployeeRepo: employeeRepo,
		ShiftRepo:    shiftRepo,
		RosterCache:  rosterCache,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:     taskRepo,
		EmployeeRepo: employeeRepo,
		RosterCache:  rosterCache,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), employeeRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Roles:          handlers.NewRolesHandler(),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		Schedule:       handlers.NewScheduleHandler(scheduleService),
		Tasks:          handlers.NewTasksHandler(taskService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
