package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel is a notification transport.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
	ChannelPush     Channel = "PUSH"
)

// IsValid returns true if the channel is recognized.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp || c == ChannelPush
}

// Status is the state of a single delivery.
type Status string

const (
	StatusQueued Status = "QUEUED"
	StatusSent   Status = "SENT"
	StatusFailed Status = "FAILED"
)

// Message is a request to notify one recipient on one channel.
type Message struct {
	Channel        Channel
	RecipientRef   string
	TemplateID     string
	Payload        map[string]any
	IdempotencyKey string
}

// Receipt identifies a message accepted by a provider.
type Receipt struct {
	Provider          string
	ProviderMessageID string
}

// Delivery is one notification attempt record, unique per idempotency key.
type Delivery struct {
	ID                uuid.UUID
	IdempotencyKey    string
	Channel           Channel
	RecipientRef      string
	TemplateID        string
	Payload           map[string]any
	Status            Status
	AttemptCount      int
	Provider          string
	ProviderMessageID string
	LastError         string
	SentAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewQueuedDelivery builds the QUEUED row for msg.
func NewQueuedDelivery(msg Message, now time.Time) *Delivery {
	now = now.UTC()
	return &Delivery{
		ID:             uuid.New(),
		IdempotencyKey: msg.IdempotencyKey,
		Channel:        msg.Channel,
		RecipientRef:   msg.RecipientRef,
		TemplateID:     msg.TemplateID,
		Payload:        msg.Payload,
		Status:         StatusQueued,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Message reconstructs the message this delivery was created from.
func (d *Delivery) Message() Message {
	return Message{
		Channel:        d.Channel,
		RecipientRef:   d.RecipientRef,
		TemplateID:     d.TemplateID,
		Payload:        d.Payload,
		IdempotencyKey: d.IdempotencyKey,
	}
}

// IsSent reports whether the delivery reached its terminal success state.
func (d *Delivery) IsSent() bool {
	return d.Status == StatusSent
}

// IdempotencyKey builds the dedup key for a booking event sent to one recipient on one channel.
func IdempotencyKey(event string, bookingID uuid.UUID, channel Channel, recipientRef string) string {
	return fmt.Sprintf("%s:%s:%s:%s", event, bookingID, channel, recipientRef)
}

// Provider sends messages on a single channel.
type Provider interface {
	Channel() Channel
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// NoActiveRecipientEndpointsError means the recipient has no usable address on the channel.
type NoActiveRecipientEndpointsError struct {
	UserID  string
	Channel Channel
}

func (e *NoActiveRecipientEndpointsError) Error() string {
	return fmt.Sprintf("no active %s endpoints for recipient %s", e.Channel, e.UserID)
}

// NewNoActiveRecipientEndpointsError creates a NoActiveRecipientEndpointsError.
func NewNoActiveRecipientEndpointsError(userID string, channel Channel) *NoActiveRecipientEndpointsError {
	return &NoActiveRecipientEndpointsError{UserID: userID, Channel: channel}
}

// DeliveryStore persists delivery records.
type DeliveryStore interface {
	// FindByKey returns (nil, nil) when no delivery has the key.
	FindByKey(ctx context.Context, key string) (*Delivery, error)
	// CreateQueued inserts d. If another row already holds the key, that row is returned instead.
	CreateQueued(ctx context.Context, d *Delivery) (*Delivery, error)
	// IncrementAttempt bumps the attempt counter and returns the new value.
	IncrementAttempt(ctx context.Context, id uuid.UUID) (int, error)
	MarkSent(ctx context.Context, id uuid.UUID, receipt Receipt, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// ListQueued returns up to limit QUEUED rows, oldest first.
	ListQueued(ctx context.Context, limit int) ([]*Delivery, error)
	// ListFailed returns up to limit FAILED rows with fewer than maxAttempts attempts, oldest first.
	ListFailed(ctx context.Context, limit, maxAttempts int) ([]*Delivery, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
