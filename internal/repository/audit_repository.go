package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	auditDomain "github.com/servicehub/service-booking/internal/domain/audit"
	"gorm.io/gorm"
)

// AuditEventModel is the GORM model for the append-only audit_events table.
type AuditEventModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EventType    string          `gorm:"type:varchar(64);not null;index"`
	ActorID      uuid.UUID       `gorm:"type:uuid;not null"`
	ActorRole    string          `gorm:"type:varchar(20);not null"`
	ResourceType string          `gorm:"type:varchar(40);not null"`
	ResourceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Metadata     json.RawMessage `gorm:"type:jsonb;not null"`
	OccurredAt   time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName overrides the default table name.
func (AuditEventModel) TableName() string { return "audit_events" }

// GormAuditRepository implements audit.Sink using GORM.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends an audit event.
func (r *GormAuditRepository) Record(ctx context.Context, e auditDomain.Event) error {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}
	model := &AuditEventModel{
		ID:           e.ID,
		EventType:    e.EventType,
		ActorID:      e.ActorID,
		ActorRole:    e.ActorRole,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Metadata:     metadata,
		OccurredAt:   e.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// ListByResource returns the events for one resource, oldest first.
func (r *GormAuditRepository) ListByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]auditDomain.Event, error) {
	var models []AuditEventModel
	if err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("occurred_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	events := make([]auditDomain.Event, len(models))
	for i, m := range models {
		var metadata map[string]any
		if len(m.Metadata) > 0 {
			if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}
		events[i] = auditDomain.Event{
			ID:           m.ID,
			EventType:    m.EventType,
			ActorID:      m.ActorID,
			ActorRole:    m.ActorRole,
			ResourceType: m.ResourceType,
			ResourceID:   m.ResourceID,
			Metadata:     metadata,
			OccurredAt:   m.OccurredAt,
		}
	}
	return events, nil
}
