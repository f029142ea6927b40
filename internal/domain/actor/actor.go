package actor

import "github.com/google/uuid"

// Role is the kind of principal invoking an operation.
type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
	// RoleSystem is used for automated steps with no human behind them.
	RoleSystem Role = "SYSTEM"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Actor is the authenticated principal behind a call.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// New creates an actor.
func New(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

// System returns the actor used for automated post-commit steps.
func System() Actor {
	return Actor{ID: uuid.Nil, Role: RoleSystem}
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsClient reports whether the actor is a client.
func (a Actor) IsClient() bool { return a.Role == RoleClient }

// IsProvider reports whether the actor is a provider.
func (a Actor) IsProvider() bool { return a.Role == RoleProvider }

// IsSystem reports whether the actor is the system itself.
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }
