package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/shainakels/harmonilink-backend/internal/auth"
	"github.com/shainakels/harmonilink-backend/internal/config"
	"github.com/shainakels/harmonilink-backend/internal/database"
	"github.com/shainakels/harmonilink-backend/internal/discovery"
	"github.com/shainakels/harmonilink-backend/internal/email"
	httpServer "github.com/shainakels/harmonilink-backend/internal/http"
	"github.com/shainakels/harmonilink-backend/internal/logging"
	"github.com/shainakels/harmonilink-backend/internal/mixtape"
	"github.com/shainakels/harmonilink-backend/internal/poll"
	"github.com/shainakels/harmonilink-backend/internal/ratelimit"
	"github.com/shainakels/harmonilink-backend/internal/social"
	"github.com/shainakels/harmonilink-backend/internal/upload"
	"github.com/shainakels/harmonilink-backend/internal/user"
)

// @title           Harmonilink API
// @version         1.0
// @description     REST backend for the Harmonilink music-first social discovery app.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)
	mixtapeRepo := mixtape.NewRepository(db)
	socialRepo := social.NewRepository(db)
	discoveryRepo := discovery.NewRepository(db)
	pollRepo := poll.NewRepository(db)
	otpRepo := auth.NewRedisOTPRepository(redisClient)
	passwordResetRepo := auth.NewRedisPasswordResetRepository(redisClient)

	rateLimiter := ratelimit.NewLimiter(redisClient)

	tokenService, err := auth.NewTokenService(cfg.Auth.Scheme, cfg.Auth.Secret)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)

	authService := auth.NewService(
		userRepo,
		otpRepo,
		passwordResetRepo,
		tokenService,
		emailService,
		logger,
		cfg.Auth.TokenDuration,
		cfg.Auth.RememberDuration,
	)

	uploadHandler, err := upload.NewHandler(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes)
	if err != nil {
		return fmt.Errorf("failed to initialize upload handler: %w", err)
	}

	handlers := httpServer.Handlers{
		Auth:      auth.NewHandler(authService, rateLimiter, logger),
		User:      user.NewHandler(userRepo, cfg.Server.BaseURL),
		Mixtape:   mixtape.NewHandler(mixtapeRepo, cfg.Server.BaseURL),
		Social:    social.NewHandler(socialRepo, cfg.Server.BaseURL),
		Discovery: discovery.NewHandler(discoveryRepo, cfg.Server.BaseURL),
		Poll:      poll.NewHandler(pollRepo),
		Upload:    uploadHandler,
	}
	authMiddleware := auth.NewMiddleware(tokenService)

	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
