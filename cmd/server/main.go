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
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/servicehub/service-booking/internal/application"
	"github.com/servicehub/service-booking/internal/config"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/domain/notification"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	bookingEvents "github.com/servicehub/service-booking/internal/events"
	"github.com/servicehub/service-booking/internal/handler"
	"github.com/servicehub/service-booking/internal/notify"
	"github.com/servicehub/service-booking/internal/payment"
	"github.com/servicehub/service-booking/internal/platform/auth"
	"github.com/servicehub/service-booking/internal/platform/database"
	"github.com/servicehub/service-booking/internal/platform/health"
	"github.com/servicehub/service-booking/internal/platform/kafka"
	"github.com/servicehub/service-booking/internal/platform/logger"
	"github.com/servicehub/service-booking/internal/platform/middleware"
	"github.com/servicehub/service-booking/internal/repository"
	"github.com/servicehub/service-booking/internal/worker"
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
		zap.String("business_timezone", cfg.BusinessLocation.String()),
		zap.Bool("require_upfront_payment", cfg.RequireUpfrontPayment),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(repository.Models()...); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()
	publisher := bookingEvents.NewKafkaPublisher(kafkaProducer)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	clientRepo := repository.NewGormClientProfileRepository(db)
	providerRepo := repository.NewGormProviderRepository(db)
	deviceRepo := repository.NewGormDeviceTokenRepository(db)
	paymentRepo := repository.NewGormPaymentRecordRepository(db)
	earningsRepo := repository.NewGormEarningsRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)
	deliveryRepo := repository.NewGormNotificationDeliveryRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := application.Clock(time.Now)

	// Notification providers
	recipients := application.NewRecipientDirectory(clientRepo, providerRepo, deviceRepo)
	providers := []notification.Provider{
		notify.NewEmailProvider(notify.SMTPSettings(cfg.SMTP), recipients, log),
		notify.NewWhatsAppProvider(notify.WhatsAppSettings(cfg.WhatsApp), recipients, log),
		notify.NewPushProvider(newPushSender(ctx, cfg.FirebaseCredentialsFile, log), recipients, log),
	}
	notificationService := application.NewNotificationService(
		deliveryRepo,
		providers,
		application.NotificationConfig{
			DrainConcurrency:    cfg.Notifications.DrainConcurrency,
			RatePerSecond:       cfg.Notifications.DrainRatePerSecond,
			MaxDeliveryAttempts: cfg.Notifications.MaxDeliveryAttempts,
		},
		clock,
		log,
	)

	// Payment gateways
	gateways := []paymentDomain.Gateway{payment.NewManualGateway(log)}
	if cfg.StripeSecretKey != "" {
		gateways = append(gateways, payment.NewStripeGateway(cfg.StripeSecretKey, log))
	}

	// Initialize application services
	clientService := application.NewClientProfileService(clientRepo, log)
	deviceService := application.NewDeviceService(deviceRepo, log)
	earningsService := application.NewEarningsService(
		earningsRepo, bookingRepo, paymentRepo, auditRepo, cfg.PlatformFeePercent, clock, log,
	)
	effects := application.NewSideEffectRunner(cfg.AsyncSideEffects, log)

	bookingService := application.NewBookingService(application.BookingServiceDeps{
		Repo:      bookingRepo,
		Providers: providerRepo,
		Clients:   clientService,
		Guard:     application.NewAuthorizationGuard(providerRepo),
		IDs:       application.NewDisplayIDGenerator(bookingRepo, log),
		Pricing:   bookingDomain.NewHourlyPricingStrategy(),
		Capture: application.NewPaymentCaptureCoordinator(
			paymentRepo, payment.NewFactory(gateways...), earningsService, clock, log,
		),
		Notifier: application.NewBookingNotifier(
			notificationService, clientRepo, providerRepo, cfg.Notifications.DeliverInline, log,
		),
		Audit:     auditRepo,
		Publisher: publisher,
		Effects:   effects,
		Clock:     clock,
		Config: application.BookingConfig{
			RequireUpfrontPayment: cfg.RequireUpfrontPayment,
			BusinessLocation:      cfg.BusinessLocation,
			DefaultCurrency:       cfg.DefaultCurrency,
		},
		Logger: log,
	})

	// Initialize and start payment event consumer in a goroutine
	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		paymentRepo,
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

	// Background notification worker
	var (
		taskServer *asynq.Server
		scheduler  *asynq.Scheduler
	)
	if cfg.RedisConfig.Addr != "" {
		taskServer, scheduler = startWorker(cfg, notificationService, log)
	} else {
		log.Warn("REDIS_ADDR not set, queued notifications are only drained through the admin API")
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService, earningsService, notificationService)
	clientHandler := handler.NewClientHandler(clientService)
	deviceHandler := handler.NewDeviceHandler(deviceService)

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
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	clientHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	deviceHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

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

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Shutdown()
	}
	if taskServer != nil {
		taskServer.Shutdown()
	}

	// Let in-flight post-commit side effects finish
	effects.Wait()

	log.Info("service-booking stopped")
}

// newPushSender returns the FCM client, or nil when push is not configured.
func newPushSender(ctx context.Context, credentialsFile string, log *zap.Logger) notify.MulticastSender {
	if credentialsFile == "" {
		log.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications will fail")
		return nil
	}
	client, err := notify.NewFCMClient(ctx, credentialsFile)
	if err != nil {
		log.Error("failed to initialize firebase messaging", zap.Error(err))
		return nil
	}
	return client
}

func startWorker(cfg *config.ServiceConfig, processor worker.BatchProcessor, log *zap.Logger) (*asynq.Server, *asynq.Scheduler) {
	redisOpt := worker.RedisOpt(cfg.RedisConfig)

	mux := asynq.NewServeMux()
	worker.NewHandlers(processor, cfg.Notifications.DrainBatchSize, log).Register(mux)

	taskServer := worker.NewServer(redisOpt, 2, log)
	if err := taskServer.Start(mux); err != nil {
		log.Error("failed to start notification worker", zap.Error(err))
		return nil, nil
	}

	scheduler, err := worker.NewScheduler(redisOpt, worker.Schedule{
		BatchSize:     cfg.Notifications.DrainBatchSize,
		DrainInterval: cfg.Notifications.DrainInterval,
		RetryInterval: cfg.Notifications.RetryInterval,
	}, log)
	if err != nil {
		log.Error("failed to create notification scheduler", zap.Error(err))
		return taskServer, nil
	}
	if err := scheduler.Start(); err != nil {
		log.Error("failed to start notification scheduler", zap.Error(err))
		return taskServer, nil
	}

	log.Info("notification worker started",
		zap.Duration("drain_interval", cfg.Notifications.DrainInterval),
		zap.Duration("retry_interval", cfg.Notifications.RetryInterval),
	)
	return taskServer, scheduler
}
