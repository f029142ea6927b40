package booking

import (
	"fmt"

	"github.com/servicehub/service-booking/internal/platform/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	StatusPending        BookingStatus = "PENDING"
	StatusAccepted       BookingStatus = "ACCEPTED"
	StatusOnMyWay        BookingStatus = "ON_MY_WAY"
	StatusArrived        BookingStatus = "ARRIVED"
	StatusCompleted      BookingStatus = "COMPLETED"
	StatusRejected       BookingStatus = "REJECTED"
	StatusCancelled      BookingStatus = "CANCELLED"
)

// InitialStatus is the status every booking is created with.
const InitialStatus = StatusPendingPayment

// validTransitions defines the state machine for booking status transitions.
// A status missing from this table is treated as having no outgoing edges.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPendingPayment: {StatusPending, StatusCancelled},
	StatusPending:        {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:       {StatusOnMyWay, StatusCancelled},
	StatusOnMyWay:        {StatusArrived, StatusCancelled},
	StatusArrived:        {StatusCompleted},
	StatusCompleted:      {},
	StatusRejected:       {},
	StatusCancelled:      {},
}

// AllStatuses returns every status in declaration order.
func AllStatuses() []BookingStatus {
	return []BookingStatus{
		StatusPendingPayment,
		StatusPending,
		StatusAccepted,
		StatusOnMyWay,
		StatusArrived,
		StatusCompleted,
		StatusRejected,
		StatusCancelled,
	}
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ValidateTransition returns an InvalidStateTransitionError unless current -> target is an edge.
func ValidateTransition(current, target BookingStatus) error {
	if !current.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(current), string(target))
	}
	return nil
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
