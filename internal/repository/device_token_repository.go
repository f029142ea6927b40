package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	deviceDomain "github.com/servicehub/service-booking/internal/domain/device"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenModel is the GORM model for the device_tokens table.
type DeviceTokenModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Platform   string    `gorm:"type:varchar(10);not null"`
	Token      string    `gorm:"type:text;not null;uniqueIndex"`
	Active     bool      `gorm:"not null;default:true"`
	LastSeenAt time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName overrides the default table name.
func (DeviceTokenModel) TableName() string { return "device_tokens" }

// GormDeviceTokenRepository implements TokenRepository using GORM.
type GormDeviceTokenRepository struct {
	db *gorm.DB
}

// NewGormDeviceTokenRepository creates a new GormDeviceTokenRepository.
func NewGormDeviceTokenRepository(db *gorm.DB) *GormDeviceTokenRepository {
	return &GormDeviceTokenRepository{db: db}
}

// Upsert registers the token. A token re-registered by another user moves to that user.
func (r *GormDeviceTokenRepository) Upsert(ctx context.Context, t *deviceDomain.Token) error {
	model := &DeviceTokenModel{
		ID:         t.ID(),
		UserID:     t.UserID(),
		Platform:   string(t.Platform()),
		Token:      t.Value(),
		Active:     true,
		LastSeenAt: t.LastSeenAt(),
		CreatedAt:  t.CreatedAt(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "active", "last_seen_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

// Deactivate marks one of the user's tokens inactive.
func (r *GormDeviceTokenRepository) Deactivate(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Model(&DeviceTokenModel{}).
		Where("user_id = ? AND token = ?", userID, token).
		Update("active", false).Error
}

// DeactivateTokens marks the given tokens inactive for every user.
func (r *GormDeviceTokenRepository) DeactivateTokens(ctx context.Context, tokens []string) error {
	return r.db.WithContext(ctx).
		Model(&DeviceTokenModel{}).
		Where("token IN ?", tokens).
		Update("active", false).Error
}

// FindActiveByUserID returns the user's active tokens.
func (r *GormDeviceTokenRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*deviceDomain.Token, error) {
	var models []DeviceTokenModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("last_seen_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	tokens := make([]*deviceDomain.Token, len(models))
	for i, m := range models {
		tokens[i] = deviceDomain.Reconstruct(m.ID, m.UserID, deviceDomain.Platform(m.Platform), m.Token, m.Active, m.LastSeenAt, m.CreatedAt)
	}
	return tokens, nil
}
