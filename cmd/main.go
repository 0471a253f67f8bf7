package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/api/handlers"
	"github.com/tajious/parkify/internal/api/router"
	"github.com/tajious/parkify/internal/auth"
	"github.com/tajious/parkify/internal/config"
	"github.com/tajious/parkify/internal/lockout"
	"github.com/tajious/parkify/internal/middleware"
	"github.com/tajious/parkify/internal/objectstore"
	"github.com/tajious/parkify/internal/service"
	"github.com/tajious/parkify/internal/storage"
	"github.com/tajious/parkify/pkg/logger"
)

const maxUploadSize = 10 << 20

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parkify: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.Server.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "parkify",
	})

	// Initialize storage
	store, err := storage.NewPostgresStorage(storage.BuildDSN(cfg.Database))
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	rdb, lockStore, rateStore, err := setupRedis(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	objects, err := setupObjectStore(cfg.Storage, log)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiration())
	var grants auth.GrantStore = auth.NewMemoryGrantStore()
	if rdb != nil {
		grants = auth.NewRedisGrantStore(rdb)
	}
	guard := lockout.NewGuard(lockStore, lockout.Options{
		MaxAttempts:   cfg.Lockout.MaxAttempts,
		Duration:      cfg.Lockout.Duration,
		AttemptWindow: cfg.Lockout.AttemptWindow,
	})

	authService := service.NewAuthService(store, tokens, guard, log)
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Parkify",
		BodyLimit:             maxUploadSize,
		DisableStartupMessage: !cfg.IsDevelopment(),
		ErrorHandler:          handlers.NewErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.HeaderPasswordToken,
	}))
	app.Use(middleware.RequestLogger(log))

	rateCfg := middleware.RateLimitConfig{
		Enabled: cfg.Server.RateLimit.Enabled,
		Limit:   cfg.Server.RateLimit.Limit,
		Window:  cfg.Server.RateLimit.Window,
	}

	apiRouter := router.NewRouter(
		app,
		router.Handlers{
			Auth:      handlers.NewAuthHandler(authService),
			Lessor:    handlers.NewLessorHandler(service.NewLessorService(store, tokens, grants, guard, log)),
			User:      handlers.NewUserHandler(service.NewUserService(store, tokens, log)),
			Complaint: handlers.NewComplaintHandler(service.NewComplaintService(store, log), log),
			Upload:    handlers.NewUploadHandler(service.NewImageService(store, objects, cfg.Storage.Buckets, log)),
			Health:    handlers.NewHealthHandler(store, rdb, log),
		},
		middleware.NewAuthMiddleware(tokens),
		middleware.NewRateLimiter(rateStore, rateCfg.Enabled, log),
		rateCfg,
	)
	apiRouter.SetupRoutes()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

// setupRedis returns in-memory stores when no Redis host is configured.
func setupRedis(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, lockout.Store, middleware.RateLimitStore, error) {
	if cfg.Host == "" {
		log.Warn().Msg("REDIS_HOST not set, lockout and rate limits are kept in memory")
		return nil, lockout.NewMemoryStore(), middleware.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, lockout.NewRedisStore(rdb), middleware.NewRedisStore(rdb), nil
}

func setupObjectStore(cfg config.StorageConfig, log zerolog.Logger) (objectstore.Store, error) {
	if cfg.URL == "" {
		log.Warn().Msg("STORAGE_URL not set, images are kept in memory")
		return objectstore.NewMemoryStore("http://localhost"), nil
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("STORAGE_SERVICE_KEY is required when STORAGE_URL is set")
	}

	objects, err := objectstore.NewSupabaseStore(cfg.URL, cfg.ServiceKey, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("initialize object store: %w", err)
	}
	return objects, nil
}
