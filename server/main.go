package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymflow/api/routes"
	"gymflow/internal/notifications"
	"gymflow/internal/shared/config"
	"gymflow/internal/shared/database"
	"gymflow/internal/shared/middleware"
	"gymflow/internal/waitlist"
	"gymflow/pkg/logger"
	"gymflow/pkg/metrics"
	"gymflow/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Smart environment loading
	envErr := godotenv.Load()

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		appLogger = logger.GetDefault()
		appLogger.Warn("failed to build configured logger, using default", zap.Error(err))
	}
	logger.SetDefault(appLogger)
	defer appLogger.Sync()

	if envErr != nil {
		// Check if we're in production/container mode
		if cfg.GinMode == gin.ReleaseMode || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	appLogger.Info("starting gymflow waitlist service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
	)

	// Initialize DB
	db, err := database.InitDB(cfg, appLogger.Logger)
	if err != nil {
		appLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m := metrics.Default()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedisClient() != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			WaitlistRequests: cfg.RateLimit.WaitlistRequests,
			BookingRequests:  cfg.RateLimit.BookingRequests,
			HealthRequests:   cfg.RateLimit.HealthRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			zap.Duration("window", cfg.RateLimit.WindowDuration),
			zap.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Kafka producer, when configured
	var producer notifications.NotificationProducer
	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultKafkaProducerConfig()
		producerConfig.Brokers = cfg.Kafka.Brokers
		producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic
		producerConfig.CapacityTopic = cfg.Kafka.CapacityTopic

		kafkaProducer, err := notifications.NewKafkaProducer(producerConfig, appLogger.Logger, m)
		if err != nil {
			appLogger.Fatal("failed to create kafka producer", zap.Error(err))
		}
		producer = kafkaProducer
		defer func() {
			if err := kafkaProducer.Close(); err != nil {
				appLogger.Error("error closing kafka producer", zap.Error(err))
			}
		}()
	} else {
		appLogger.Info("Kafka disabled: capacity events handled in-process, notifications stay queued")
	}

	appRouter := routes.NewRouter(cfg, db, appLogger, m, producer)

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	defer backgroundCancel()

	// Capacity released consumer
	var consumer *notifications.CapacityConsumer
	if cfg.Kafka.Enabled {
		consumerConfig := notifications.DefaultConsumerConfig()
		consumerConfig.Brokers = cfg.Kafka.Brokers
		consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
		consumerConfig.Topics = []string{cfg.Kafka.CapacityTopic}

		consumer, err = notifications.NewCapacityConsumer(consumerConfig, appRouter.WaitlistService(), appLogger.Logger, m)
		if err != nil {
			appLogger.Fatal("failed to create capacity consumer", zap.Error(err))
		}
		consumer.Start(backgroundCtx)
	}

	// Background jobs
	jobs := waitlist.NewJobProcessor(appRouter.WaitlistService(), &waitlist.JobConfig{
		DispatchEnabled:     producer != nil,
		DispatchInterval:    cfg.Waitlist.DispatchInterval,
		ExpirySweepEnabled:  cfg.Waitlist.ExpirySweepEnabled,
		ExpiryCheckInterval: cfg.Waitlist.ExpirySweepInterval,
		BatchSize:           cfg.Waitlist.DispatchBatchSize,
	}, appLogger.Logger)
	jobs.Start(backgroundCtx)
	appRouter.SetJobProcessor(jobs)

	router := setupRouter(appRouter, appLogger, m, rateLimiter)

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("Server running",
			zap.String("address", cfg.GetServerAddress()),
			zap.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			zap.String("api_base", cfg.GetAPIBasePath()),
			zap.Bool("redis", db.GetRedisClient() != nil),
			zap.Bool("kafka", cfg.Kafka.Enabled),
			zap.Bool("auth", cfg.JWT.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}

	backgroundCancel()
	jobs.Stop()
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			appLogger.Error("error stopping capacity consumer", zap.Error(err))
		}
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(appRouter *routes.Router, appLogger *logger.Logger, m *metrics.WaitlistMetrics, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()

	// Logs requests, records metrics, recovers from panics
	engine.Use(middleware.RequestLogger(appLogger), m.GinMiddleware(), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger, m))
	}

	appRouter.SetupRoutes(engine)

	return engine
}
