package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	"github.com/homefix-app/service-booking/internal/config"
	bookingEvents "github.com/homefix-app/service-booking/internal/events"
	"github.com/homefix-app/service-booking/internal/handler"
	"github.com/homefix-app/service-booking/internal/health"
	"github.com/homefix-app/service-booking/internal/logger"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database. TranslateError lets the review store detect
	// unique-index violations as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(cfg.DBConfig.DSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.QuoteModel{},
			&repository.ReviewModel{},
			&repository.PhotoModel{},
			&repository.PaymentAuditModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, 15*time.Minute)

	// Initialize Kafka producer and notifier
	kafkaProducer := bookingEvents.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()
	notifier := bookingEvents.NewKafkaNotifier(kafkaProducer, "service-booking", log)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	quoteRepo := repository.NewGormQuoteRepository(db)
	reviewRepo := repository.NewGormReviewRepository(db)
	photoRepo := repository.NewGormPhotoRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(bookingRepo, quoteRepo, kafkaProducer, notifier, log)
	quoteService := application.NewQuoteService(bookingRepo, quoteRepo, kafkaProducer, notifier, log)
	paymentService := application.NewPaymentService(bookingRepo, bookingRepo, auditRepo, kafkaProducer, notifier, log)
	reviewService := application.NewReviewService(bookingRepo, reviewRepo, kafkaProducer, notifier, log)
	photoService := application.NewPhotoService(bookingRepo, photoRepo, log)

	// Start the user-events consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "booking-service"
	userConsumer := bookingEvents.NewUserEventConsumer(cfg.Kafka.Brokers, groupID, bookingService, log)
	defer func() { _ = userConsumer.Close() }()

	go func() {
		log.Info("starting user event consumer")
		if err := userConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("user event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	photoHandler := handler.NewPhotoHandler(photoService)
	adminHandler := handler.NewAdminBookingHandler(bookingService, paymentService)

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
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	quoteHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	reviewHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	photoHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
