package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/servicehub/service-booking/internal/application"
	"github.com/servicehub/service-booking/internal/domain/actor"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"github.com/servicehub/service-booking/internal/platform/kafka"
	"go.uber.org/zap"
)

// PaymentConfirmer is the orchestrator operation triggered by an authorized payment.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, a actor.Actor, bookingID uuid.UUID) (*application.BookingDTO, error)
}

// PaymentEventConsumer listens to payment events and confirms bookings whose payment was authorized.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	payments paymentDomain.RecordStore
	service  PaymentConfirmer
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	payments paymentDomain.RecordStore,
	service PaymentConfirmer,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, paymentDomain.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		payments: payments,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.HandleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

// HandleMessage processes one payment event. A returned error makes the consumer retry it.
func (c *PaymentEventConsumer) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case paymentDomain.EventPaymentAuthorized:
		return c.handlePaymentAuthorized(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentAuthorized(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt paymentDomain.AuthorizedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment authorized data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	log := c.logger.With(
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)
	log.Info("processing payment authorized event")

	existing, err := c.payments.FindByBookingID(ctx, evt.BookingID)
	if err != nil {
		log.Error("failed to load payment record", zap.Error(err))
		return err
	}
	if existing != nil && existing.Status.IsSettled() {
		log.Info("ignoring authorization for settled payment",
			zap.String("status", string(existing.Status)),
		)
		return nil
	}

	occurred := evt.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	record := &paymentDomain.Payment{
		ID:          evt.PaymentID,
		BookingID:   evt.BookingID,
		Provider:    evt.Provider,
		ExternalRef: evt.ExternalRef,
		AmountCents: evt.AmountCents,
		Currency:    evt.Currency,
		Status:      paymentDomain.StatusAuthorized,
		CreatedAt:   occurred,
	}
	if err := c.payments.Upsert(ctx, record); err != nil {
		log.Error("failed to store payment record", zap.Error(err))
		return err
	}

	_, err = c.service.ConfirmPayment(ctx, actor.System(), evt.BookingID)
	switch {
	case err == nil:
		log.Info("booking confirmed after payment authorization")
		return nil
	case domain.IsInvalidState(err), domain.IsNotFound(err), domain.IsConflict(err):
		// Redelivered or stale events: the booking already moved on or never existed.
		log.Warn("payment authorized for booking that cannot be confirmed", zap.Error(err))
		return nil
	default:
		log.Error("failed to confirm booking after payment authorization", zap.Error(err))
		return err
	}
}
