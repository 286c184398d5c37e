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

	httptransport "github.com/travel-desk/itinerary-service/internal/api/http"
	"github.com/travel-desk/itinerary-service/internal/api/http/handlers"
	"github.com/travel-desk/itinerary-service/internal/auth"
	"github.com/travel-desk/itinerary-service/internal/config"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/observability"
	"github.com/travel-desk/itinerary-service/internal/persistence"
	"github.com/travel-desk/itinerary-service/internal/repository"
	"github.com/travel-desk/itinerary-service/internal/repository/memory"
	"github.com/travel-desk/itinerary-service/internal/service"
	"github.com/travel-desk/itinerary-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg)

	var blacklist auth.Blacklist = auth.NewMemoryBlacklist()
	if redis.Enabled() {
		blacklist = auth.NewRedisBlacklist(redis.Client)
	}

	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Audit.Enabled {
		worker.StartAuditWorker(service.NewAuditService(dispatcher, logger.Named("audit")))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	authService := service.NewAuthService(service.AuthDependencies{
		IdentityRepo: repos.identities,
		EmployeeRepo: repos.employees,
		Tokens:       tokens,
		Blacklist:    blacklist,
		Dispatcher:   dispatcher,
		Logger:       logger,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	itineraryService := service.NewItineraryService(service.ItineraryDependencies{
		ItineraryRepo: repos.itineraries,
		EmployeeRepo:  repos.employees,
		TxRunner:      repos.tx,
		Dispatcher:    dispatcher,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Itineraries:    handlers.NewItineraryHandler(itineraryService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.identities),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

type repositories struct {
	identities  repository.IdentityRepository
	employees   repository.EmployeeRepository
	itineraries repository.ItineraryRepository
	tx          repository.TxRunner
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			identities:  store.Identities(),
			employees:   store.Employees(),
			itineraries: store.Itineraries(),
			tx:          store.TxRunner(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		identities:  repository.NewIdentityRepository(pool),
		employees:   repository.NewEmployeeRepository(pool),
		itineraries: repository.NewItineraryRepository(pool),
		tx:          repository.NewTxRunner(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
