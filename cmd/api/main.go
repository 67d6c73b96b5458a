package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/rental-service/internal/api/http"
	"github.com/spec-kit/rental-service/internal/api/http/handlers"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/config"
	"github.com/spec-kit/rental-service/internal/events"
	"github.com/spec-kit/rental-service/internal/media"
	"github.com/spec-kit/rental-service/internal/observability"
	"github.com/spec-kit/rental-service/internal/persistence"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/internal/service"
	"github.com/spec-kit/rental-service/internal/worker"
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

	checks := map[string]handlers.Pinger{}
	store, closeStore := openStore(ctx, cfg, logger, checks)
	defer closeStore()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var locker service.Locker = service.NoopLocker{}
	if cfg.Booking.LockEnabled {
		if err := redis.Ping(ctx); err != nil {
			logger.Warn("redis unavailable; booking lock disabled", zap.Error(err))
		} else {
			locker = persistence.NewRedisLocker(redis.Client, cfg.App.Name+":lock:")
			checks["redis"] = redis
		}
	}

	mediaStore := openMedia(cfg.Media, logger)

	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Events.NATSURL != "" {
		conn, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.App.Name, logger)
		if err != nil {
			logger.Warn("nats unavailable; events stay in-process", zap.Error(err))
		} else {
			defer conn.Drain() //nolint:errcheck
			dispatcher = events.NewNATSBridge(dispatcher, conn, cfg.Events.SubjectPrefix, logger)
			logger.Info("publishing events to nats", zap.String("prefix", cfg.Events.SubjectPrefix))
		}
	}

	notificationService := service.NewNotificationService(logger, cfg.Notification)
	notifications := worker.StartNotificationWorker(ctx, dispatcher, notificationService, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   store.Users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	listingService := service.NewListingService(service.ListingDependencies{
		ListingRepo: store.Listings,
		UserRepo:    store.Users,
		Media:       mediaStore,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	bookingService := service.NewBookingService(cfg.Booking, service.BookingDependencies{
		BookingRepo: store.Bookings,
		ListingRepo: store.Listings,
		Locker:      locker,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:       store.Users,
		ListingRepo:    store.Listings,
		BookingRepo:    store.Bookings,
		ListingService: listingService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitMB * 1024 * 1024,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks, metrics),
		Auth:             handlers.NewAuthHandler(authService),
		Listings:         handlers.NewListingsHandler(listingService),
		Bookings:         handlers.NewBookingsHandler(bookingService),
		Admin:            handlers.NewAdminHandler(adminService),
		AuthMiddleware:   authMiddleware,
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	if notifications != nil {
		notifications.Wait()
	}
}

// openStore connects the configured backend and registers its readiness probe.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, checks map[string]handlers.Pinger) (*repository.Store, func()) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("failed to connect mongo", zap.Error(err))
		}
		if err := repository.EnsureMongoIndexes(ctx, mg.Database); err != nil {
			logger.Fatal("failed to create mongo indexes", zap.Error(err))
		}
		checks["mongo"] = mg
		return repository.NewMongoStore(mg.Database), func() { mg.Close(context.Background()) }

	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), func() {}

	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		checks["postgres"] = pg
		return repository.NewPostgresStore(pg.PoolHandle()), pg.Close
	}
}

func openMedia(cfg config.MediaConfig, logger *zap.Logger) media.Store {
	if !cfg.Enabled() {
		logger.Warn("cloudinary credentials missing; image uploads disabled")
		return media.Disabled{}
	}
	cld, err := media.NewCloudinary(cfg, logger)
	if err != nil {
		logger.Fatal("failed to init cloudinary", zap.Error(err))
	}
	return cld
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
