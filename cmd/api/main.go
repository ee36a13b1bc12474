package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/ticket-mgt/ticket-api/internal/api/http"
	"github.com/ticket-mgt/ticket-api/internal/api/http/handlers"
	"github.com/ticket-mgt/ticket-api/internal/auth"
	"github.com/ticket-mgt/ticket-api/internal/cache"
	"github.com/ticket-mgt/ticket-api/internal/config"
	"github.com/ticket-mgt/ticket-api/internal/events"
	"github.com/ticket-mgt/ticket-api/internal/observability"
	"github.com/ticket-mgt/ticket-api/internal/persistence"
	"github.com/ticket-mgt/ticket-api/internal/repository"
	"github.com/ticket-mgt/ticket-api/internal/service"
	"github.com/ticket-mgt/ticket-api/internal/worker"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	storeDriver := pflag.String("store", "", "store driver override: file, memory or postgres")
	dataFile := pflag.String("data-file", "", "JSON document path override for the file store")
	port := pflag.String("port", "", "listen port override")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *storeDriver != "" {
		cfg.Store.Driver = *storeDriver
	}
	if *dataFile != "" {
		cfg.Store.DataFile = *dataFile
	}
	if *port != "" {
		cfg.App.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger,
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env))
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer stores.close()

	var tokenCache cache.TokenCache = cache.NoopTokenCache{}
	dependencies := map[string]repository.Pinger{"store": stores.pinger}
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		tokenCache = cache.NewRedisTokenCache(redis.Client, cfg.Redis.TokenTTL())
		dependencies["redis"] = redis
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   stores.users,
		TokenCache: tokenCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: stores.tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(httptransport.AppConfig{
		Name:           cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Routes: httptransport.RouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
			Users:   handlers.NewUsersHandler(authService),
			Tickets: handlers.NewTicketsHandler(ticketService),
			Guard:   auth.NewGuard(authService),
		},
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

type storeSet struct {
	users   repository.UserRepository
	tickets repository.TicketRepository
	pinger  repository.Pinger
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeSet, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		doc := repository.NewMemoryDocumentStore()
		return &storeSet{users: doc.Users(), tickets: doc.Tickets(), pinger: doc, close: func() {}}, nil
	case config.StoreDriverFile:
		doc := repository.NewFileDocumentStore(cfg.Store.DataFile)
		if err := doc.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("using json document store", zap.String("path", cfg.Store.DataFile))
		return &storeSet{users: doc.Users(), tickets: doc.Tickets(), pinger: doc, close: func() {}}, nil
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &storeSet{
			users:   repository.NewPostgresUserRepository(pool),
			tickets: repository.NewPostgresTicketRepository(pool),
			pinger:  pg,
			close:   pg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
