package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/config"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/domain/user"
	bookingEvents "github.com/shareit-platform/service-booking/internal/events"
	"github.com/shareit-platform/service-booking/internal/handler"
	"github.com/shareit-platform/service-booking/internal/platform/auth"
	"github.com/shareit-platform/service-booking/internal/platform/database"
	"github.com/shareit-platform/service-booking/internal/platform/health"
	"github.com/shareit-platform/service-booking/internal/platform/kafka"
	"github.com/shareit-platform/service-booking/internal/platform/logger"
	"github.com/shareit-platform/service-booking/internal/platform/metrics"
	"github.com/shareit-platform/service-booking/internal/platform/middleware"
	"github.com/shareit-platform/service-booking/internal/repository"
)

const serviceName = "service-booking"

// stores groups the repositories for the configured storage backend.
type stores struct {
	users    user.UserRepository
	items    item.ItemRepository
	comments item.CommentRepository
	bookings bookingDomain.BookingRepository
	requests request.ItemRequestRepository
	checks   map[string]health.Checker
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage),
		zap.Bool("kafka", cfg.KafkaConfig.Enabled),
	)

	// Initialize repositories
	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		st = memoryStores()
		log.Warn("using in-memory storage, data is lost on restart")
	default:
		st = postgresStores(cfg, log)
	}

	// Optional Redis cache in front of item lookups
	if cfg.RedisConfig.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = rdb.Close() }()

		cached := repository.NewCachedItemRepository(st.items, rdb, cfg.RedisConfig.TTL, log)
		st.items = cached
		st.checks["redis"] = cached.Ping
		log.Info("item cache enabled", zap.String("addr", cfg.RedisConfig.Addr))
	}

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.DiscardPublisher{Logger: log}
	if cfg.KafkaConfig.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	// Initialize JWT manager and metrics
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)
	m := metrics.New("shareit")

	// Initialize application services
	guard := application.NewAccessGuard(st.users, st.items, st.bookings, st.requests)
	bookingService := application.NewBookingService(st.bookings, st.items, guard, publisher, m, cfg.Policy, log)
	itemService := application.NewItemService(st.items, st.comments, st.bookings, guard, publisher, log)
	userService := application.NewUserService(st.users, publisher, log)
	requestService := application.NewRequestService(st.requests, st.items, guard, log)

	// Initialize and start catalog event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KafkaConfig.Enabled {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		catalogConsumer := bookingEvents.NewCatalogEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			userService,
			itemService,
			log,
		)
		defer func() { _ = catalogConsumer.Close() }()

		go func() {
			log.Info("starting catalog event consumer")
			if err := catalogConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("catalog event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	health.NewHandler(serviceName, st.checks).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Register API routes
	api := router.Group("")
	if cfg.RateLimit.RPS > 0 {
		api.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}
	authMW := middleware.AuthMiddleware(jwtManager, cfg.AllowHeaderIdentity)

	handler.NewBookingHandler(bookingService).RegisterRoutes(api, authMW)
	handler.NewItemHandler(itemService).RegisterRoutes(api, authMW)
	handler.NewUserHandler(userService).RegisterRoutes(api)
	handler.NewRequestHandler(requestService).RegisterRoutes(api, authMW)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(api, authMW)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func memoryStores() stores {
	return stores{
		users:    repository.NewMemoryUserRepository(),
		items:    repository.NewMemoryItemRepository(),
		comments: repository.NewMemoryCommentRepository(),
		bookings: repository.NewMemoryBookingRepository(),
		requests: repository.NewMemoryItemRequestRepository(),
		checks:   map[string]health.Checker{},
	}
}

func postgresStores(cfg *config.ServiceConfig, log *zap.Logger) stores {
	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.UserModel{}, &repository.ItemModel{}, &repository.BookingModel{}, &repository.CommentModel{}, &repository.ItemRequestModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), repository.Migrations, repository.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	return stores{
		users:    repository.NewGormUserRepository(db),
		items:    repository.NewGormItemRepository(db),
		comments: repository.NewGormCommentRepository(db),
		bookings: repository.NewGormBookingRepository(db),
		requests: repository.NewGormItemRequestRepository(db),
		checks:   map[string]health.Checker{"postgres": pingDB(db)},
	}
}

func pingDB(db *gorm.DB) health.Checker {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
