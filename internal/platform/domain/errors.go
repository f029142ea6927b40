package domain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when input fails a business rule. Client fixable.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError is returned when a resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateTransitionError is returned when a status change is not an edge of the state machine.
type InvalidStateTransitionError struct {
	Current   string
	Attempted string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.Current, e.Attempted)
}

// NewInvalidStateError creates an InvalidStateTransitionError.
func NewInvalidStateError(current, attempted string) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Current: current, Attempted: attempted}
}

// UnauthorizedActionError is returned when an actor may not invoke an action on a resource.
type UnauthorizedActionError struct {
	Action string
	Reason string
}

func (e *UnauthorizedActionError) Error() string {
	return fmt.Sprintf("unauthorized to %s: %s", e.Action, e.Reason)
}

// NewUnauthorizedError creates an UnauthorizedActionError.
func NewUnauthorizedError(action, reason string) *UnauthorizedActionError {
	return &UnauthorizedActionError{Action: action, Reason: reason}
}

// ConflictError is returned when a concurrent writer changed the row first.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// ExhaustedError is returned when a bounded retry loop runs out of attempts.
// It is an internal failure and should page someone.
type ExhaustedError struct {
	Resource string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s exhausted after %d attempts", e.Resource, e.Attempts)
}

// NewExhaustedError creates an ExhaustedError.
func NewExhaustedError(resource string, attempts int) *ExhaustedError {
	return &ExhaustedError{Resource: resource, Attempts: attempts}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateTransitionError.
func IsInvalidState(err error) bool {
	var target *InvalidStateTransitionError
	return errors.As(err, &target)
}

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedActionError.
func IsUnauthorized(err error) bool {
	var target *UnauthorizedActionError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
