package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workshops/internal/config"
	"workshops/internal/database"
	"workshops/internal/handlers"
	"workshops/internal/jobs"
	"workshops/internal/log"
	"workshops/internal/notify"
	"workshops/internal/queue"
	"workshops/internal/repository"
	"workshops/internal/security"
	"workshops/internal/server"
	"workshops/internal/service"
	"workshops/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)
	if cfg.Security.JWTSecret == "" {
		logger.Fatal().Msg("WORKSHOPS_SECURITY_JWTSECRET is required")
	}

	ctx := context.Background()

	dbPool, err := database.Open(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if err := database.Migrate(dbPool); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	redisClient, err := queue.Dial(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	fileStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init file store")
	}

	users := repository.NewUserRepository(dbPool)
	admins := repository.NewAdminRepository(dbPool)
	workshops := repository.NewWorkshopRepository(dbPool)
	reviews := repository.NewReviewRepository(dbPool)
	favorites := repository.NewFavoriteRepository(dbPool)
	storedFiles := repository.NewStoredFileRepository(dbPool)

	notifier := notify.NewQueueNotifier(redisClient, cfg.Redis.Stream)
	tokens := security.NewTokenIssuer(cfg.Security.JWTSecret, cfg.Security.JWTIssuer, cfg.Security.JWTAudience, cfg.Security.JWTTTL)

	uploadService := service.NewUploadService(fileStore, storedFiles, cfg.Storage.MaxUploadBytes, log.WithComponent(logger, "uploads"))
	reviewService := service.NewReviewService(reviews, workshops, notifier, log.WithComponent(logger, "reviews"))
	accountService := service.NewAccountService(users, admins, uploadService, notifier, service.AccountOptions{
		AdminAddress: cfg.Mail.AdminAddress,
		ResetCodeTTL: cfg.Security.ResetCodeTTL,
	}, log.WithComponent(logger, "accounts"))

	svc := handlers.Services{
		Auth:      service.NewAuthService(users, admins, tokens),
		Accounts:  accountService,
		Workshops: service.NewWorkshopService(workshops, reviewService, uploadService, log.WithComponent(logger, "workshops")),
		Reviews:   reviewService,
		Favorites: service.NewFavoriteService(favorites, workshops),
		Uploads:   uploadService,
	}

	if cfg.Bootstrap.AdminEmail != "" {
		created, err := accountService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("bootstrap admin failed")
		}
		if created {
			logger.Info().Str("email", cfg.Bootstrap.AdminEmail).Msg("bootstrap admin created")
		}
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, tokens, svc,
		handlers.HealthCheck{Name: "postgres", Ping: dbPool.Ping},
		handlers.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(accountService, log.WithComponent(logger, "scheduler"))
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop(shutdownCtx)

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
