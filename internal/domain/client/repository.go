package client

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence operations for client profiles.
type ProfileRepository interface {
	// FindByUserID returns a NotFoundError when the user has no profile.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	// Save inserts the profile, leaving an existing row for the same user untouched.
	Save(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error
}
