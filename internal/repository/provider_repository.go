package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"gorm.io/gorm"
)

// ProviderProfileModel is the GORM model for the provider_profiles table. Rows are written by
// the provider onboarding flow.
type ProviderProfileModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	DisplayName     string    `gorm:"type:varchar(120);not null"`
	Status          string    `gorm:"type:varchar(30);not null"`
	HourlyRateCents int64     `gorm:"not null"`
	Currency        string    `gorm:"type:varchar(3);not null"`
	Phone           string    `gorm:"type:varchar(32)"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

// TableName overrides the default table name.
func (ProviderProfileModel) TableName() string { return "provider_profiles" }

// GormProviderRepository implements provider.Directory using GORM.
type GormProviderRepository struct {
	db *gorm.DB
}

// NewGormProviderRepository creates a new GormProviderRepository.
func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

// FindByID retrieves a provider profile by id.
func (r *GormProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*providerDomain.Profile, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUserID retrieves the provider profile owned by userID.
func (r *GormProviderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

// Save inserts a provider profile. Used by seeding and tests.
func (r *GormProviderRepository) Save(ctx context.Context, p *providerDomain.Profile) error {
	now := time.Now().UTC()
	model := &ProviderProfileModel{
		ID:              p.ID,
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
		Status:          string(p.Status),
		HourlyRateCents: p.HourlyRateCents,
		Currency:        p.Currency,
		Phone:           p.Phone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save provider profile: %w", err)
	}
	return nil
}

func (r *GormProviderRepository) findOne(ctx context.Context, query string, arg uuid.UUID) (*providerDomain.Profile, error) {
	var m ProviderProfileModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ProviderProfile", arg.String())
		}
		return nil, fmt.Errorf("failed to find provider profile: %w", err)
	}
	return &providerDomain.Profile{
		ID:              m.ID,
		UserID:          m.UserID,
		DisplayName:     m.DisplayName,
		Status:          providerDomain.Status(m.Status),
		HourlyRateCents: m.HourlyRateCents,
		Currency:        m.Currency,
		Phone:           m.Phone,
	}, nil
}
