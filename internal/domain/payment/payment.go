package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the state of a payment held against a booking.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusAuthorized Status = "AUTHORIZED"
	StatusCaptured   Status = "CAPTURED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// IsSettled reports whether money has already moved for the payment. A settled record is
// never rewritten by a later authorization.
func (s Status) IsSettled() bool {
	return s == StatusCaptured || s == StatusRefunded
}

// Payment is the booking service's view of a payment processed elsewhere.
type Payment struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	Provider    string
	ExternalRef string
	AmountCents int64
	Currency    string
	Status      Status
	CapturedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecordStore persists payment records.
type RecordStore interface {
	// FindByBookingID returns (nil, nil) when the booking has no payment.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	// Upsert stores the payment keyed by booking, replacing a prior record for the same booking
	// unless that record is already settled.
	Upsert(ctx context.Context, p *Payment) error
	// MarkCaptured records a successful capture.
	MarkCaptured(ctx context.Context, id uuid.UUID, capturedAt time.Time) error
}

// Gateway captures authorized payments with an external processor.
type Gateway interface {
	Name() string
	CapturePayment(ctx context.Context, p *Payment) error
}

// GatewayFactory selects the gateway for a payment's provider.
type GatewayFactory interface {
	ForProvider(name string) (Gateway, error)
}
