package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/platform/domain"
)

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id             uuid.UUID
	displayID      string
	clientID       uuid.UUID
	providerID     *uuid.UUID
	category       string
	status         BookingStatus
	addressText    string
	notes          string
	isFirstBooking bool

	scheduledAt    time.Time
	estimatedHours float64

	estimatedPriceCents int64
	currency            string

	acceptedAt  *time.Time
	completedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBookingParams holds the validated inputs for a new booking.
type NewBookingParams struct {
	DisplayID           string
	ClientID            uuid.UUID
	ProviderID          uuid.UUID
	Category            string
	ScheduledAt         time.Time
	EstimatedHours      float64
	AddressText         string
	Notes               string
	EstimatedPriceCents int64
	Currency            string
	IsFirstBooking      bool
}

// NewBooking creates a new Booking aggregate with status=PENDING_PAYMENT.
func NewBooking(p NewBookingParams, now time.Time) (*Booking, error) {
	if p.ClientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if p.ProviderID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if p.DisplayID == "" {
		return nil, domain.NewValidationError("display ID is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return nil, domain.NewValidationError("service category is required")
	}
	if strings.TrimSpace(p.AddressText) == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if p.EstimatedHours <= 0 {
		return nil, domain.NewValidationError("estimated hours must be positive")
	}
	if p.EstimatedPriceCents < 0 {
		return nil, domain.NewValidationError("estimated price cannot be negative")
	}

	providerID := p.ProviderID
	now = now.UTC()
	return &Booking{
		id:                  uuid.New(),
		displayID:           p.DisplayID,
		clientID:            p.ClientID,
		providerID:          &providerID,
		category:            p.Category,
		status:              InitialStatus,
		addressText:         p.AddressText,
		notes:               p.Notes,
		isFirstBooking:      p.IsFirstBooking,
		scheduledAt:         p.ScheduledAt.UTC(),
		estimatedHours:      p.EstimatedHours,
		estimatedPriceCents: p.EstimatedPriceCents,
		currency:            p.Currency,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	displayID string,
	clientID uuid.UUID,
	providerID *uuid.UUID,
	category string,
	status BookingStatus,
	addressText string,
	notes string,
	isFirstBooking bool,
	scheduledAt time.Time,
	estimatedHours float64,
	estimatedPriceCents int64,
	currency string,
	acceptedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                  id,
		displayID:           displayID,
		clientID:            clientID,
		providerID:          providerID,
		category:            category,
		status:              status,
		addressText:         addressText,
		notes:               notes,
		isFirstBooking:      isFirstBooking,
		scheduledAt:         scheduledAt,
		estimatedHours:      estimatedHours,
		estimatedPriceCents: estimatedPriceCents,
		currency:            currency,
		acceptedAt:          acceptedAt,
		completedAt:         completedAt,
		cancelledAt:         cancelledAt,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// DisplayID returns the short human-readable identifier, e.g. "A2223".
func (b *Booking) DisplayID() string { return b.displayID }

// ClientID returns the booking client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// ProviderID returns the assigned provider profile ID, or nil if unassigned.
func (b *Booking) ProviderID() *uuid.UUID { return b.providerID }

// Category returns the service category.
func (b *Booking) Category() string { return b.category }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// AddressText returns the free-form service address.
func (b *Booking) AddressText() string { return b.addressText }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// IsFirstBooking reports whether this was the client's first booking at creation time.
func (b *Booking) IsFirstBooking() bool { return b.isFirstBooking }

// ScheduledAt returns the scheduled start time in UTC.
func (b *Booking) ScheduledAt() time.Time { return b.scheduledAt }

// EstimatedHours returns the estimated duration in hours.
func (b *Booking) EstimatedHours() float64 { return b.estimatedHours }

// EstimatedPriceCents returns the estimated price in cents.
func (b *Booking) EstimatedPriceCents() int64 { return b.estimatedPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// AcceptedAt returns when the provider accepted, or nil.
func (b *Booking) AcceptedAt() *time.Time { return b.acceptedAt }

// CompletedAt returns when the booking was completed, or nil.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns when the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version, bumped on each status write.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsAssignedTo reports whether providerID is the booking's assigned provider.
func (b *Booking) IsAssignedTo(providerID uuid.UUID) bool {
	return b.providerID != nil && *b.providerID == providerID
}

// --- Behavior ---

// TransitionTo moves the booking to target if the edge exists in the state machine.
func (b *Booking) TransitionTo(target BookingStatus, now time.Time) error {
	if err := ValidateTransition(b.status, target); err != nil {
		return err
	}
	b.apply(target, now)
	return nil
}

// ForceStatus sets the status without consulting the state machine. Only the
// administrative override path may call it.
func (b *Booking) ForceStatus(target BookingStatus, now time.Time) error {
	if !target.IsValid() {
		return domain.NewValidationError("unknown booking status: " + string(target))
	}
	b.apply(target, now)
	return nil
}

func (b *Booking) apply(target BookingStatus, now time.Time) {
	now = now.UTC()
	b.status = target
	switch target {
	case StatusAccepted:
		b.acceptedAt = &now
	case StatusCompleted:
		b.completedAt = &now
	case StatusCancelled:
		b.cancelledAt = &now
	}
	b.version++
	b.updatedAt = now
}
