package booking

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents carries every committed booking lifecycle change.
const TopicBookingEvents = "booking.events"

// Lifecycle event types published on TopicBookingEvents.
const (
	EventCreated          = "booking.created"
	EventPaymentConfirmed = "booking.payment_confirmed"
	EventAccepted         = "booking.accepted"
	EventRejected         = "booking.rejected"
	EventOnMyWay          = "booking.on_my_way"
	EventArrived          = "booking.arrived"
	EventCompleted        = "booking.completed"
	EventCancelled        = "booking.cancelled"
	EventStatusOverridden = "booking.status_overridden"
)

// eventForStatus maps a status reached through the normal lifecycle to its event type.
var eventForStatus = map[BookingStatus]string{
	StatusPending:   EventPaymentConfirmed,
	StatusAccepted:  EventAccepted,
	StatusRejected:  EventRejected,
	StatusOnMyWay:   EventOnMyWay,
	StatusArrived:   EventArrived,
	StatusCompleted: EventCompleted,
	StatusCancelled: EventCancelled,
}

// EventForStatus returns the lifecycle event emitted when a booking enters status.
func EventForStatus(status BookingStatus) (string, bool) {
	e, ok := eventForStatus[status]
	return e, ok
}

// CreatedEvent is the payload of EventCreated.
type CreatedEvent struct {
	BookingID           uuid.UUID `json:"booking_id"`
	DisplayID           string    `json:"display_id"`
	ClientID            uuid.UUID `json:"client_id"`
	ProviderID          uuid.UUID `json:"provider_id"`
	Category            string    `json:"category"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	EstimatedHours      float64   `json:"estimated_hours"`
	EstimatedPriceCents int64     `json:"estimated_price_cents"`
	Currency            string    `json:"currency"`
	IsFirstBooking      bool      `json:"is_first_booking"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// StatusChangedEvent is the payload of every other lifecycle event.
type StatusChangedEvent struct {
	BookingID      uuid.UUID  `json:"booking_id"`
	DisplayID      string     `json:"display_id"`
	ClientID       uuid.UUID  `json:"client_id"`
	ProviderID     *uuid.UUID `json:"provider_id,omitempty"`
	PreviousStatus string     `json:"previous_status"`
	Status         string     `json:"status"`
	ActorID        uuid.UUID  `json:"actor_id"`
	ActorRole      string     `json:"actor_role"`
	Reason         string     `json:"reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
