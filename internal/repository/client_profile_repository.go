package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	clientDomain "github.com/servicehub/service-booking/internal/domain/client"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientProfileModel is the GORM model for the client_profiles table.
type ClientProfileModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FullName         string    `gorm:"type:varchar(120)"`
	Email            string    `gorm:"type:varchar(255)"`
	Phone            string    `gorm:"type:varchar(32)"`
	PreferredContact string    `gorm:"type:varchar(20);not null;default:'email'"`
	Timezone         string    `gorm:"type:varchar(64);not null;default:'UTC'"`
	Version          int64     `gorm:"not null;default:1"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt        time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName overrides the default table name.
func (ClientProfileModel) TableName() string { return "client_profiles" }

// GormClientProfileRepository implements ProfileRepository using GORM.
type GormClientProfileRepository struct {
	db *gorm.DB
}

// NewGormClientProfileRepository creates a new GormClientProfileRepository.
func NewGormClientProfileRepository(db *gorm.DB) *GormClientProfileRepository {
	return &GormClientProfileRepository{db: db}
}

// FindByUserID retrieves the profile owned by userID.
func (r *GormClientProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*clientDomain.Profile, error) {
	var model ClientProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ClientProfile", userID.String())
		}
		return nil, err
	}
	return toClientProfileDomain(&model), nil
}

// Save inserts the profile. A concurrent insert for the same user wins silently.
func (r *GormClientProfileRepository) Save(ctx context.Context, p *clientDomain.Profile) error {
	model := toClientProfileModel(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(model).Error
}

// Update persists profile changes.
func (r *GormClientProfileRepository) Update(ctx context.Context, p *clientDomain.Profile) error {
	result := r.db.WithContext(ctx).
		Model(&ClientProfileModel{}).
		Where("id = ? AND version = ?", p.ID(), p.Version()-1).
		Updates(map[string]interface{}{
			"full_name":         p.FullName(),
			"email":             p.Email(),
			"phone":             p.Phone(),
			"preferred_contact": string(p.PreferredContact()),
			"timezone":          p.Timezone(),
			"version":           p.Version(),
			"updated_at":        p.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update client profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("client profile was modified by another request")
	}
	return nil
}

func toClientProfileModel(p *clientDomain.Profile) *ClientProfileModel {
	return &ClientProfileModel{
		ID:               p.ID(),
		UserID:           p.UserID(),
		FullName:         p.FullName(),
		Email:            p.Email(),
		Phone:            p.Phone(),
		PreferredContact: string(p.PreferredContact()),
		Timezone:         p.Timezone(),
		Version:          p.Version(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

func toClientProfileDomain(m *ClientProfileModel) *clientDomain.Profile {
	return clientDomain.Reconstruct(
		m.ID, m.UserID,
		m.FullName, m.Email, m.Phone,
		clientDomain.ContactChannel(m.PreferredContact),
		m.Timezone,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
