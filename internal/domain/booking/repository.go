package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows the admin booking listing.
type ListFilter struct {
	Status     *BookingStatus
	ClientID   *uuid.UUID
	ProviderID *uuid.UUID
	Category   string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier. Returns a NotFoundError when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByDisplayID retrieves a booking by its human-readable identifier.
	FindByDisplayID(ctx context.Context, displayID string) (*Booking, error)

	// FindByClientID retrieves bookings belonging to a specific client with pagination.
	FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByProviderID retrieves bookings assigned to a specific provider with pagination.
	FindByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// List retrieves bookings matching the filter (admin).
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// HighestDisplayID returns the lexicographically greatest display ID, or "" when there are none.
	HighestDisplayID(ctx context.Context) (string, error)

	// DisplayIDExists reports whether a booking already uses displayID.
	DisplayIDExists(ctx context.Context, displayID string) (bool, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// UpdateStatus persists the booking's status only if the stored status still equals
	// expected. Returns a ConflictError otherwise.
	UpdateStatus(ctx context.Context, booking *Booking, expected BookingStatus) error
}
