package application

import (
	"context"
	"fmt"

	"github.com/servicehub/service-booking/internal/domain/actor"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"github.com/servicehub/service-booking/internal/platform/domain"
)

// Action names a lifecycle operation for authorization.
type Action string

const (
	ActionCreate         Action = "create"
	ActionConfirmPayment Action = "confirm_payment"
	ActionAccept         Action = "accept"
	ActionReject         Action = "reject"
	ActionDepart         Action = "depart"
	ActionArrive         Action = "arrive"
	ActionComplete       Action = "complete"
	ActionCancel         Action = "cancel"
	ActionOverride       Action = "override_status"
	ActionView           Action = "view"
)

// AuthorizationGuard decides whether an actor may perform an action on a booking.
// It only reads; it never mutates the booking or the store.
type AuthorizationGuard struct {
	providers providerDomain.Directory
}

// NewAuthorizationGuard creates a new AuthorizationGuard.
func NewAuthorizationGuard(providers providerDomain.Directory) *AuthorizationGuard {
	return &AuthorizationGuard{providers: providers}
}

// CheckCreate authorizes booking creation, which only clients may do.
func (g *AuthorizationGuard) CheckCreate(a actor.Actor) error {
	if !a.IsClient() {
		return domain.NewUnauthorizedError(string(ActionCreate), fmt.Sprintf("role %s cannot create bookings", a.Role))
	}
	return nil
}

// Check authorizes action on bk for a.
func (g *AuthorizationGuard) Check(ctx context.Context, a actor.Actor, action Action, bk *bookingDomain.Booking) error {
	switch action {
	case ActionAccept, ActionReject, ActionDepart, ActionArrive, ActionComplete:
		return g.checkAssignedProvider(ctx, a, action, bk)
	case ActionCancel:
		return g.checkCancel(a, bk)
	case ActionConfirmPayment:
		if a.IsAdmin() || a.IsSystem() {
			return nil
		}
		return domain.NewUnauthorizedError(string(action), "only the payment system or an admin can confirm payment")
	case ActionOverride:
		if a.IsAdmin() {
			return nil
		}
		return domain.NewUnauthorizedError(string(action), "only admins can override booking status")
	case ActionView:
		return g.checkView(ctx, a, bk)
	default:
		return domain.NewUnauthorizedError(string(action), "unknown action")
	}
}

func (g *AuthorizationGuard) checkAssignedProvider(ctx context.Context, a actor.Actor, action Action, bk *bookingDomain.Booking) error {
	switch a.Role {
	case actor.RoleAdmin:
		return nil
	case actor.RoleProvider:
		profile, err := g.providers.FindByUserID(ctx, a.ID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.NewUnauthorizedError(string(action), "no provider profile for this user")
			}
			return fmt.Errorf("failed to resolve provider profile: %w", err)
		}
		if !bk.IsAssignedTo(profile.ID) {
			return domain.NewUnauthorizedError(string(action), "booking is not assigned to this provider")
		}
		return nil
	default:
		return domain.NewUnauthorizedError(string(action), fmt.Sprintf("role %s cannot %s bookings", a.Role, action))
	}
}

func (g *AuthorizationGuard) checkCancel(a actor.Actor, bk *bookingDomain.Booking) error {
	switch a.Role {
	case actor.RoleAdmin:
		return nil
	case actor.RoleClient:
		if bk.ClientID() == a.ID {
			return nil
		}
		return domain.NewUnauthorizedError(string(ActionCancel), "booking does not belong to this client")
	default:
		return domain.NewUnauthorizedError(string(ActionCancel), fmt.Sprintf("role %s cannot cancel bookings", a.Role))
	}
}

func (g *AuthorizationGuard) checkView(ctx context.Context, a actor.Actor, bk *bookingDomain.Booking) error {
	switch a.Role {
	case actor.RoleAdmin, actor.RoleSystem:
		return nil
	case actor.RoleClient:
		if bk.ClientID() == a.ID {
			return nil
		}
	case actor.RoleProvider:
		profile, err := g.providers.FindByUserID(ctx, a.ID)
		if err == nil && bk.IsAssignedTo(profile.ID) {
			return nil
		}
		if err != nil && !domain.IsNotFound(err) {
			return fmt.Errorf("failed to resolve provider profile: %w", err)
		}
	}
	return domain.NewUnauthorizedError(string(ActionView), "booking is not visible to this user")
}
