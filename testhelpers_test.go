//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/servicehub/service-booking/internal/application"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/domain/notification"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	bookingEvents "github.com/servicehub/service-booking/internal/events"
	"github.com/servicehub/service-booking/internal/payment"
	"github.com/servicehub/service-booking/internal/platform/database"
	"github.com/servicehub/service-booking/internal/platform/kafka"
	"github.com/servicehub/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// recordingProvider accepts every message on one channel and remembers it.
type recordingProvider struct {
	channel notification.Channel
	mu      sync.Mutex
	sent    []notification.Message
}

func (p *recordingProvider) Channel() notification.Channel { return p.channel }

func (p *recordingProvider) Send(_ context.Context, msg notification.Message) (notification.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return notification.Receipt{Provider: "test", ProviderMessageID: uuid.NewString()}, nil
}

func (p *recordingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	Providers       *repository.GormProviderRepository
	Payments        *repository.GormPaymentRecordRepository
	Email           *recordingProvider
	Push            *recordingProvider
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers, applies the SQL migrations and
// returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("test_booking"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	dbURL, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbURL, "migrations", logger))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, bookingDomain.TopicBookingEvents, paymentDomain.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack against real Postgres and Kafka.
// Notification providers record instead of sending; payments use the manual gateway.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, clock application.Clock) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	clientRepo := repository.NewGormClientProfileRepository(db)
	providerRepo := repository.NewGormProviderRepository(db)
	paymentRepo := repository.NewGormPaymentRecordRepository(db)
	auditRepo := repository.NewGormAuditRepository(db)

	email := &recordingProvider{channel: notification.ChannelEmail}
	push := &recordingProvider{channel: notification.ChannelPush}
	whatsapp := &recordingProvider{channel: notification.ChannelWhatsApp}
	notifications := application.NewNotificationService(
		repository.NewGormNotificationDeliveryRepository(db),
		[]notification.Provider{email, push, whatsapp},
		application.NotificationConfig{DrainConcurrency: 2},
		clock,
		logger,
	)

	earnings := application.NewEarningsService(
		repository.NewGormEarningsRepository(db), bookingRepo, paymentRepo, auditRepo, 15, clock, logger,
	)

	producer := kafka.NewProducer(brokers, logger)
	bookingSvc := application.NewBookingService(application.BookingServiceDeps{
		Repo:      bookingRepo,
		Providers: providerRepo,
		Clients:   application.NewClientProfileService(clientRepo, logger),
		Guard:     application.NewAuthorizationGuard(providerRepo),
		IDs:       application.NewDisplayIDGenerator(bookingRepo, logger),
		Pricing:   bookingDomain.NewHourlyPricingStrategy(),
		Capture: application.NewPaymentCaptureCoordinator(
			paymentRepo, payment.NewFactory(payment.NewManualGateway(logger)), earnings, clock, logger,
		),
		Notifier:  application.NewBookingNotifier(notifications, clientRepo, providerRepo, true, logger),
		Audit:     auditRepo,
		Publisher: bookingEvents.NewKafkaPublisher(producer),
		Effects:   application.NewSideEffectRunner(false, logger),
		Clock:     clock,
		Config: application.BookingConfig{
			RequireUpfrontPayment: true,
			BusinessLocation:      time.UTC,
			DefaultCurrency:       "USD",
		},
		Logger: logger,
	})

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, paymentRepo, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		Providers:       providerRepo,
		Payments:        paymentRepo,
		Email:           email,
		Push:            push,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedProvider inserts an active provider profile.
func seedProvider(t *testing.T, repo *repository.GormProviderRepository, hourlyRateCents int64) *providerDomain.Profile {
	t.Helper()
	p := &providerDomain.Profile{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		DisplayName:     "Integration Provider",
		Status:          providerDomain.StatusActive,
		HourlyRateCents: hourlyRateCents,
		Currency:        "USD",
	}
	require.NoError(t, repo.Save(context.Background(), p), "failed to seed provider")
	return p
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("id = ?", bookingID).First(&model).Error
		if err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
