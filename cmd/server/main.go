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
	"github.com/juju/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/carhub/service-rental/internal/application"
	"github.com/carhub/service-rental/internal/config"
	bookingDomain "github.com/carhub/service-rental/internal/domain/booking"
	rentalEvents "github.com/carhub/service-rental/internal/events"
	"github.com/carhub/service-rental/internal/handler"
	"github.com/carhub/service-rental/internal/invoice"
	"github.com/carhub/service-rental/internal/notification"
	"github.com/carhub/service-rental/internal/realtime"
	"github.com/carhub/service-rental/internal/repository"
	"github.com/carhub/service-rental/internal/scheduler"
	"github.com/carhub/service-rental/internal/storage"
	"github.com/carhub/service-rental/pkg/auth"
	"github.com/carhub/service-rental/pkg/database"
	"github.com/carhub/service-rental/pkg/health"
	"github.com/carhub/service-rental/pkg/kafka"
	"github.com/carhub/service-rental/pkg/logger"
	"github.com/carhub/service-rental/pkg/middleware"
)

const serviceName = "service-rental"

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
		zap.String("store", cfg.StoreDriver),
	)

	// Open the blob store
	store, db, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL, cfg.JWTConfig.RefreshTTL)

	// Kafka producer is optional; without brokers events are dropped.
	var publisher application.EventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	clk := clock.WallClock

	// Initialize repositories
	bookingRepo := repository.NewBlobBookingRepository(store, log)
	carRepo := repository.NewBlobCarRepository(store, log)
	ratingRepo := repository.NewBlobRatingRepository(store, log)
	favoriteRepo := repository.NewBlobFavoriteRepository(store, log)
	compareRepo := repository.NewBlobCompareRepository(store, log)
	preferenceRepo := repository.NewBlobPreferenceRepository(store, log)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		carRepo,
		bookingDomain.NewDailyPricingStrategy(),
		publisher,
		clk,
		log,
	)
	carService := application.NewCarService(carRepo, bookingRepo, clk, log)
	ratingService := application.NewRatingService(ratingRepo, bookingRepo, clk, log)
	favoriteService := application.NewFavoriteService(favoriteRepo, carService, log)
	compareService := application.NewCompareService(compareRepo, carService, log)
	preferenceService := application.NewPreferenceService(preferenceRepo, log)
	dashboardService := application.NewDashboardService(bookingService, favoriteService, ratingService)
	invoiceService := application.NewInvoiceService(
		bookingRepo,
		carRepo,
		invoice.NewRenderer(cfg.CompanyName),
		publisher,
		clk,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expiration reminders: one poller per connected dashboard
	hub := realtime.NewHub(cfg.AllowedOrigin, log.Named("realtime"))
	notifier := notification.NewExpirationNotifier(hub, publisher, clk, log)
	expirations := scheduler.NewManager(scheduler.ManagerConfig{
		Window:         cfg.Expiration.Window,
		Interval:       cfg.Expiration.Interval,
		IncludeExpired: cfg.Expiration.IncludeExpired,
		Deduplicate:    cfg.Expiration.Deduplicate,
		Notify: func(ctx context.Context, userID string, b application.ExpiringBooking) {
			notifier.Notify(ctx, userID, b)
		},
	}, bookingService, clk, log.Named("expiration"))
	defer expirations.StopAll()
	hub.OnConnect(expirations.Watch)
	hub.OnDisconnect(expirations.Unwatch)

	// Periodic status reconciliation
	reconciler := scheduler.NewReconciler(bookingService, cfg.ReconcileInterval, clk, log.Named("reconciler"))
	go reconciler.Start(ctx)

	// Payment event consumer
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		paymentConsumer := rentalEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	api := &router.RouterGroup
	handler.NewBookingHandler(bookingService).RegisterRoutes(api, jwtManager)
	handler.NewInvoiceHandler(invoiceService).RegisterRoutes(api, jwtManager)
	handler.NewCarHandler(carService, ratingService).RegisterRoutes(api)
	handler.NewRatingHandler(ratingService).RegisterRoutes(api, jwtManager)
	handler.NewAccountHandler(favoriteService, compareService, preferenceService, dashboardService).RegisterRoutes(api, jwtManager)
	handler.NewAdminHandler(bookingService, carService).RegisterRoutes(api, jwtManager)
	handler.NewWSHandler(hub, log).RegisterRoutes(api, jwtManager)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop the workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// openStore returns the configured blob store. db is nil for the memory driver.
func openStore(cfg *config.ServiceConfig, log *zap.Logger) (storage.Store, *gorm.DB, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return storage.NewMemoryStore(), nil, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&storage.BlobModel{}); err != nil {
			return nil, nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
		return nil, nil, err
	}

	return storage.NewPostgresStore(db), db, nil
}
