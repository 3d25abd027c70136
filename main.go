package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gigplane-inc/gigplane-engine/pkg/auth"
	"github.com/gigplane-inc/gigplane-engine/pkg/config"
	"github.com/gigplane-inc/gigplane-engine/pkg/database"
	"github.com/gigplane-inc/gigplane-engine/pkg/events"
	"github.com/gigplane-inc/gigplane-engine/pkg/handlers"
	"github.com/gigplane-inc/gigplane-engine/pkg/logging"
	"github.com/gigplane-inc/gigplane-engine/pkg/middleware"
	"github.com/gigplane-inc/gigplane-engine/pkg/repositories"
	"github.com/gigplane-inc/gigplane-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("events_exchange", cfg.Events.Exchange))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations need a database/sql handle; the app itself uses pgx pools.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
		defer func() { _ = redisClient.Close() }()
	} else {
		logger.Warn("Redis not configured, logout revocation disabled")
	}

	publisher := events.NewNopPublisher()
	if cfg.Events.URL != "" {
		publisher, err = events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to AMQP broker", zap.Error(err))
		}
	} else {
		logger.Warn("AMQP not configured, lifecycle events disabled")
	}
	defer publisher.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db.Pool)
	projectRepo := repositories.NewProjectRepository(db.Pool)
	proposalRepo := repositories.NewProposalRepository(db.Pool)
	paymentRepo := repositories.NewPaymentRepository(db.Pool)
	reviewRepo := repositories.NewReviewRepository(db.Pool)

	// Services
	authService := auth.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL(), revocations, logger)
	userService := services.NewUserService(userRepo, logger)
	projectService := services.NewProjectService(db.Pool, projectRepo, proposalRepo, publisher, logger)
	proposalService := services.NewProposalService(db.Pool, projectRepo, proposalRepo, publisher, logger)
	paymentService := services.NewPaymentService(db.Pool, projectRepo, paymentRepo, publisher, logger)
	reviewService := services.NewReviewService(db.Pool, projectRepo, reviewRepo, userRepo, publisher, logger)

	// HTTP surface
	authMiddleware := auth.NewMiddleware(authService, logger)
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(userService, authService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProposalsHandler(proposalService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPaymentsHandler(paymentService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewReviewsHandler(reviewService, logger).RegisterRoutes(mux, authMiddleware)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:      middleware.RequestLogger(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting gigplane-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds a production logger, or a development logger for local
// environments.
func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
