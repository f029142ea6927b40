package payment

import (
	"time"

	"github.com/google/uuid"
)

// TopicPaymentEvents is where the payment service announces payment state changes.
const TopicPaymentEvents = "payment.events"

// EventPaymentAuthorized is emitted once a client's payment hold succeeds.
const EventPaymentAuthorized = "payment.authorized"

// AuthorizedEvent is the payload of EventPaymentAuthorized.
type AuthorizedEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Provider    string    `json:"provider"`
	ExternalRef string    `json:"external_ref"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}
