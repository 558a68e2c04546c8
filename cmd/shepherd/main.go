package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/shepherdhq/shepherd/pkg/api"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/churches"
	"github.com/shepherdhq/shepherd/pkg/config"
	"github.com/shepherdhq/shepherd/pkg/lessons"
	"github.com/shepherdhq/shepherd/pkg/middleware"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/storage/dynamo"
	"github.com/shepherdhq/shepherd/pkg/students"
	"github.com/shepherdhq/shepherd/pkg/studies"
	"github.com/shepherdhq/shepherd/pkg/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)
	metrics := observability.NewMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := dynamo.New(ctx, cfg.Storage, dynamo.WithMetrics(metrics))
	cancel()
	if err != nil {
		logger.WithError(err).Error("failed to initialize storage")
		os.Exit(1)
	}

	var redisClient *redis.Client
	var rateLimiter *middleware.RateLimiter
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.WithError(err).Error("invalid redis URL")
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		rateLimiter = middleware.NewRateLimiter(
			redisClient, cfg.Redis.RequestsPerWindow, cfg.Redis.WindowDuration,
			"ratelimit:auth", logger,
		)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	userService := users.NewService(store, store, store, tokens, hasher, logger, metrics)
	churchService := churches.NewService(store, store, store, store, logger)
	studentService := students.NewService(store, store, logger, metrics)
	studyService := studies.NewService(store, store, store, logger)
	lessonService := lessons.NewService(store, store, store, logger)

	server := api.NewServer(api.Deps{
		Users:              userService,
		Churches:           churchService,
		Students:           studentService,
		Studies:            studyService,
		Lessons:            lessonService,
		Tokens:             tokens,
		Logger:             logger,
		Metrics:            metrics,
		RateLimiter:        rateLimiter,
		ExposeErrorDetails: !cfg.IsProduction(),
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(store, redisClient)
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: api.NewHealthHandler(health, metrics),
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}

	go func() {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
			os.Exit(1)
		}
	}()

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":        apiServer.Addr,
			"environment": cfg.Environment,
		}).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}
