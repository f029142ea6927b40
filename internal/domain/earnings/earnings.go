package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Earning is the provider's share of a completed booking.
type Earning struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	ProviderID uuid.UUID
	GrossCents int64
	FeeCents   int64
	NetCents   int64
	Currency   string
	RecordedAt time.Time
}

// Repository persists earnings. At most one earning exists per booking.
type Repository interface {
	// InsertIfAbsent stores e unless the booking already has an earning. created is false
	// when an earning was already present.
	InsertIfAbsent(ctx context.Context, e *Earning) (created bool, err error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Earning, error)
}
