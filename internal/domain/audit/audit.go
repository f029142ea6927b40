package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types written by this service.
const (
	EventStatusOverride  = "booking.status_override"
	EventEarningRecorded = "earnings.recorded"
)

// Event is an append-only record of a privileged or money-moving action.
type Event struct {
	ID           uuid.UUID
	EventType    string
	ActorID      uuid.UUID
	ActorRole    string
	ResourceType string
	ResourceID   uuid.UUID
	Metadata     map[string]any
	OccurredAt   time.Time
}

// Sink stores audit events.
type Sink interface {
	Record(ctx context.Context, e Event) error
	ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]Event, error)
}
