package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	earningsDomain "github.com/servicehub/service-booking/internal/domain/earnings"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningModel is the GORM model for the provider_earnings table.
type EarningModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index"`
	GrossCents int64     `gorm:"not null"`
	FeeCents   int64     `gorm:"not null"`
	NetCents   int64     `gorm:"not null"`
	Currency   string    `gorm:"type:varchar(3);not null"`
	RecordedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName overrides the default table name.
func (EarningModel) TableName() string { return "provider_earnings" }

// GormEarningsRepository implements earnings.Repository using GORM.
type GormEarningsRepository struct {
	db *gorm.DB
}

// NewGormEarningsRepository creates a new GormEarningsRepository.
func NewGormEarningsRepository(db *gorm.DB) *GormEarningsRepository {
	return &GormEarningsRepository{db: db}
}

// InsertIfAbsent relies on the booking_id unique index so concurrent callers credit once.
func (r *GormEarningsRepository) InsertIfAbsent(ctx context.Context, e *earningsDomain.Earning) (bool, error) {
	model := &EarningModel{
		ID:         e.ID,
		BookingID:  e.BookingID,
		ProviderID: e.ProviderID,
		GrossCents: e.GrossCents,
		FeeCents:   e.FeeCents,
		NetCents:   e.NetCents,
		Currency:   e.Currency,
		RecordedAt: e.RecordedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "booking_id"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert earning: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// FindByBookingID returns (nil, nil) when no earning was recorded for the booking.
func (r *GormEarningsRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*earningsDomain.Earning, error) {
	var m EarningModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Earning", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find earning: %w", err)
	}
	return &earningsDomain.Earning{
		ID:         m.ID,
		BookingID:  m.BookingID,
		ProviderID: m.ProviderID,
		GrossCents: m.GrossCents,
		FeeCents:   m.FeeCents,
		NetCents:   m.NetCents,
		Currency:   m.Currency,
		RecordedAt: m.RecordedAt,
	}, nil
}
