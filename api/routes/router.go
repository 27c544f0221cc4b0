// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"gymflow/internal/bookings"
	"gymflow/internal/notifications"
	"gymflow/internal/schedules"
	"gymflow/internal/shared/clock"
	"gymflow/internal/shared/config"
	"gymflow/internal/shared/database"
	"gymflow/internal/shared/middleware"
	"gymflow/internal/waitlist"
	"gymflow/pkg/cache"
	"gymflow/pkg/logger"
	"gymflow/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	log      *logger.Logger
	metrics  *metrics.WaitlistMetrics
	producer notifications.NotificationProducer

	waitlistService waitlist.Service
	bookingService  bookings.Service
	jobs            *waitlist.JobProcessor
}

// NewRouter wires repositories and services. producer may be nil when Kafka is disabled,
// in which case capacity events are handled in-process and notifications stay queued.
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, m *metrics.WaitlistMetrics, producer notifications.NotificationProducer) *Router {
	r := &Router{
		config:   cfg,
		db:       db,
		log:      log,
		metrics:  m,
		producer: producer,
	}
	r.initServices()
	return r
}

func (r *Router) initServices() {
	gormDB := r.db.GetPostgreSQL()
	clk := clock.New()

	var locker waitlist.Locker = waitlist.NewLocalLocker()
	var statsCache cache.Service
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		locker = waitlist.NewRedisLocker(redisClient, r.config.Waitlist.LockTTL, r.config.Waitlist.LockWait, r.log.Logger)
		statsCache = cache.NewService(redisClient, r.log.Logger)
	}

	deps := waitlist.Dependencies{
		Repository: waitlist.NewRepository(gormDB),
		Schedules:  schedules.NewRepository(gormDB),
		Bookings:   bookings.NewRepository(gormDB),
		Locker:     locker,
		Cache:      statsCache,
		Clock:      clk,
		Logger:     r.log.Logger,
		Metrics:    r.metrics,
		Config:     &waitlist.ServiceConfig{StatsTTL: r.config.Waitlist.StatsTTL},
	}
	if r.producer != nil {
		deps.Publisher = r.producer
	}
	r.waitlistService = waitlist.NewService(deps)

	var capacityPublisher bookings.CapacityPublisher
	if r.producer != nil {
		capacityPublisher = r.producer
	} else {
		capacityPublisher = notifications.NewDirectCapacityPublisher(r.waitlistService)
	}
	r.bookingService = bookings.NewService(bookings.NewRepository(gormDB), capacityPublisher, clk, r.log.Logger)
}

// WaitlistService is shared with the Kafka consumer and the background jobs.
func (r *Router) WaitlistService() waitlist.Service {
	return r.waitlistService
}

// SetJobProcessor exposes job status on /status.
func (r *Router) SetJobProcessor(jobs *waitlist.JobProcessor) {
	r.jobs = jobs
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	if r.config.JWT.Enabled {
		api.Use(middleware.JWTAuthWithConfig(r.config))
	}
	{
		r.setupWaitlistRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "gymflow-waitlist",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "gymflow-waitlist",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		status := gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"kafka":       r.producer != nil,
			"timestamp":   time.Now(),
		}
		if r.jobs != nil {
			status["jobs"] = r.jobs.GetJobStatus()
		}
		c.JSON(http.StatusOK, status)
	})

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// setupWaitlistRoutes configures class waitlist routes
func (r *Router) setupWaitlistRoutes(rg *gin.RouterGroup) {
	controller := waitlist.NewController(r.waitlistService, r.log.Logger)
	waitlist.SetupWaitlistRoutes(rg, controller)
}

// setupBookingRoutes configures booking routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	controller := bookings.NewController(r.bookingService, r.log.Logger)
	bookings.SetupBookingRoutes(rg, controller)
}
