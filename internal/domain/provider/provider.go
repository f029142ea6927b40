package provider

import (
	"context"

	"github.com/google/uuid"
)

// Status is the onboarding state of a provider profile.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING_VERIFICATION"
	StatusSuspended Status = "SUSPENDED"
)

// Profile is a provider as seen by the booking service. Profiles are owned by the
// provider onboarding flow; this service only reads them.
type Profile struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	DisplayName     string
	Status          Status
	HourlyRateCents int64
	Currency        string
	Phone           string
}

// IsSuspended reports whether the provider may not take new bookings.
func (p *Profile) IsSuspended() bool {
	return p.Status == StatusSuspended
}

// Directory resolves provider profiles.
type Directory interface {
	// FindByID returns a NotFoundError when no profile has the given id.
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// FindByUserID returns a NotFoundError when the user has no provider profile.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
}
