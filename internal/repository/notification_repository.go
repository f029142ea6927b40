package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/domain/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationDeliveryModel is the GORM model for the notification_deliveries table.
type NotificationDeliveryModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	IdempotencyKey    string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	Channel           string          `gorm:"type:varchar(20);not null"`
	RecipientRef      string          `gorm:"type:varchar(64);not null;index"`
	TemplateID        string          `gorm:"type:varchar(64);not null"`
	Payload           json.RawMessage `gorm:"type:jsonb;not null"`
	Status            string          `gorm:"type:varchar(20);not null;index:idx_deliveries_status_created,priority:1"`
	AttemptCount      int             `gorm:"not null;default:0"`
	Provider          string          `gorm:"type:varchar(40)"`
	ProviderMessageID string          `gorm:"type:varchar(255)"`
	LastError         string          `gorm:"type:text"`
	SentAt            *time.Time      `gorm:"type:timestamptz"`
	CreatedAt         time.Time       `gorm:"type:timestamptz;not null;index:idx_deliveries_status_created,priority:2"`
	UpdatedAt         time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName overrides the default table name.
func (NotificationDeliveryModel) TableName() string { return "notification_deliveries" }

// GormNotificationDeliveryRepository implements notification.DeliveryStore using GORM.
type GormNotificationDeliveryRepository struct {
	db *gorm.DB
}

// NewGormNotificationDeliveryRepository creates a new GormNotificationDeliveryRepository.
func NewGormNotificationDeliveryRepository(db *gorm.DB) *GormNotificationDeliveryRepository {
	return &GormNotificationDeliveryRepository{db: db}
}

// FindByKey returns (nil, nil) when no delivery has the key.
func (r *GormNotificationDeliveryRepository) FindByKey(ctx context.Context, key string) (*notification.Delivery, error) {
	var m NotificationDeliveryModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find delivery: %w", err)
	}
	return toDeliveryDomain(&m)
}

// CreateQueued inserts d, or returns the row that already holds its idempotency key.
func (r *GormNotificationDeliveryRepository) CreateQueued(ctx context.Context, d *notification.Delivery) (*notification.Delivery, error) {
	model, err := toDeliveryModel(d)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "idempotency_key"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert delivery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		existing, err := r.FindByKey(ctx, d.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("delivery %s vanished after conflict", d.IdempotencyKey)
		}
		return existing, nil
	}
	return d, nil
}

// IncrementAttempt bumps the attempt counter and returns the new value.
func (r *GormNotificationDeliveryRepository) IncrementAttempt(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&NotificationDeliveryModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"attempt_count": gorm.Expr("attempt_count + 1"),
				"updated_at":    time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.Model(&NotificationDeliveryModel{}).
			Where("id = ?", id).
			Select("attempt_count").
			Scan(&attempts).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempt: %w", err)
	}
	return attempts, nil
}

// MarkSent records a successful send with the provider receipt.
func (r *GormNotificationDeliveryRepository) MarkSent(ctx context.Context, id uuid.UUID, receipt notification.Receipt, sentAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&NotificationDeliveryModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":              string(notification.StatusSent),
			"provider":            receipt.Provider,
			"provider_message_id": receipt.ProviderMessageID,
			"last_error":          "",
			"sent_at":             sentAt.UTC(),
			"updated_at":          sentAt.UTC(),
		}).Error
}

// MarkFailed never downgrades a row another worker already marked SENT.
func (r *GormNotificationDeliveryRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&NotificationDeliveryModel{}).
		Where("id = ? AND status <> ?", id, string(notification.StatusSent)).
		Updates(map[string]interface{}{
			"status":     string(notification.StatusFailed),
			"last_error": reason,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListQueued returns up to limit QUEUED deliveries, oldest first.
func (r *GormNotificationDeliveryRepository) ListQueued(ctx context.Context, limit int) ([]*notification.Delivery, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", string(notification.StatusQueued)), limit)
}

// ListFailed returns up to limit FAILED deliveries with fewer than maxAttempts attempts.
func (r *GormNotificationDeliveryRepository) ListFailed(ctx context.Context, limit, maxAttempts int) ([]*notification.Delivery, error) {
	q := r.db.WithContext(ctx).Where("status = ? AND attempt_count < ?", string(notification.StatusFailed), maxAttempts)
	return r.list(ctx, q, limit)
}

// CountByStatus returns delivery counts grouped by status.
func (r *GormNotificationDeliveryRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&NotificationDeliveryModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count deliveries by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

func (r *GormNotificationDeliveryRepository) list(ctx context.Context, q *gorm.DB, limit int) ([]*notification.Delivery, error) {
	var models []NotificationDeliveryModel
	if err := q.Order("created_at ASC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	deliveries := make([]*notification.Delivery, len(models))
	for i := range models {
		d, err := toDeliveryDomain(&models[i])
		if err != nil {
			return nil, err
		}
		deliveries[i] = d
	}
	return deliveries, nil
}

func toDeliveryModel(d *notification.Delivery) (*NotificationDeliveryModel, error) {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delivery payload: %w", err)
	}
	return &NotificationDeliveryModel{
		ID:                d.ID,
		IdempotencyKey:    d.IdempotencyKey,
		Channel:           string(d.Channel),
		RecipientRef:      d.RecipientRef,
		TemplateID:        d.TemplateID,
		Payload:           payload,
		Status:            string(d.Status),
		AttemptCount:      d.AttemptCount,
		Provider:          d.Provider,
		ProviderMessageID: d.ProviderMessageID,
		LastError:         d.LastError,
		SentAt:            d.SentAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

func toDeliveryDomain(m *NotificationDeliveryModel) (*notification.Delivery, error) {
	var payload map[string]any
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal delivery payload: %w", err)
		}
	}
	return &notification.Delivery{
		ID:                m.ID,
		IdempotencyKey:    m.IdempotencyKey,
		Channel:           notification.Channel(m.Channel),
		RecipientRef:      m.RecipientRef,
		TemplateID:        m.TemplateID,
		Payload:           payload,
		Status:            notification.Status(m.Status),
		AttemptCount:      m.AttemptCount,
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		LastError:         m.LastError,
		SentAt:            m.SentAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}
