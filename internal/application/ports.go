package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/domain/actor"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	"github.com/servicehub/service-booking/internal/domain/notification"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, key string, data interface{}) error
}

// EarningsRecorder credits a provider for a completed booking. Implementations must be
// idempotent per booking.
type EarningsRecorder interface {
	RecordForCompletedBooking(ctx context.Context, by actor.Actor, bookingID uuid.UUID) error
}

// ClientProfiles is the subset of ClientProfileService the orchestrator needs.
type ClientProfiles interface {
	EnsureExists(ctx context.Context, userID uuid.UUID) error
}

// MessageDispatcher is the subset of NotificationService the booking notifier needs.
type MessageDispatcher interface {
	Enqueue(ctx context.Context, msg notification.Message) (*notification.Delivery, error)
	DeliverNow(ctx context.Context, msg notification.Message) *notification.Delivery
}

// LifecycleNotifier announces a booking lifecycle event to the booking's parties. It never fails;
// delivery problems are recorded on the delivery rows and logged.
type LifecycleNotifier interface {
	Notify(ctx context.Context, event string, bk *bookingDomain.Booking)
}
