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

	httptransport "github.com/spec-kit/marketplace-service/internal/api/http"
	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	authority, err := auth.NewAuthority(auth.AuthorityConfig{
		Secret:                 cfg.Auth.JWTSecret,
		Algorithm:              cfg.Auth.JWTAlgorithm,
		AccessTTL:              cfg.Auth.AccessTTL(),
		RefreshTTL:             cfg.Auth.RefreshTTL(),
		RefreshRevalidatesRole: cfg.Auth.RefreshRevalidatesRole,
	}, accountRepo, roleRepo)
	if err != nil {
		logger.Fatal("failed to init token authority", zap.Error(err))
	}

	guardOpts := auth.GuardOptions{Accounts: accountRepo}
	if cfg.Auth.RevocationEnabled {
		guardOpts.Revocations = repository.NewRevocationStore(redis.Client)
	}
	guard := auth.NewGuard(authority, guardOpts)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	authService := service.NewAuthService(service.AuthDependencies{
		AccountRepo: accountRepo,
		RoleRepo:    roleRepo,
		Authority:   authority,
		Revoker:     guard,
		Dispatcher:  dispatcher,
		Logger:      logger,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	reviewService := service.NewReviewService(service.ReviewDependencies{
		ReviewRepo:  reviewRepo,
		AccountRepo: accountRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	if err := authService.SeedRoles(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}

	dependencies := map[string]handlers.Pinger{"postgres": pg}
	if cfg.Auth.RevocationEnabled {
		dependencies["redis"] = redis
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:     handlers.NewAuthHandler(authService),
		Products: handlers.NewProductsHandler(productService),
		Orders:   handlers.NewOrdersHandler(orderService),
		Reviews:  handlers.NewReviewsHandler(reviewService),
		Metrics:  handlers.NewMetricsHandler(metrics),
		Guard:    guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
